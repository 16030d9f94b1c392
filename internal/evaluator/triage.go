package evaluator

import (
	"strings"

	"healthpulse-engine/internal/models"
)

// triageTier 分诊等级：命中任一关键词即采用该等级
type triageTier struct {
	severity  models.SeverityLevel
	urgency   int
	diagnosis string
	keywords  []string
}

// 按优先级排列，第一个命中的等级生效
var triageTiers = []triageTier{
	{
		severity:  models.SeverityCritical,
		urgency:   95,
		diagnosis: "EMERGENCY - Seek immediate medical attention",
		keywords: []string{
			"chest pain",
			"difficulty breathing",
			"shortness of breath",
			"stroke",
			"severe bleeding",
			"loss of consciousness",
			"allergic reaction",
			"severe allergy",
		},
	},
	{
		severity:  models.SeverityHigh,
		urgency:   75,
		diagnosis: "Urgent consultation recommended",
		keywords: []string{
			"severe headache",
			"high fever",
			"persistent vomiting",
			"abdominal pain",
			"vision changes",
			"numbness",
			"paralysis",
			"confusion",
		},
	},
	{
		severity:  models.SeverityMedium,
		urgency:   55,
		diagnosis: "Schedule appointment soon",
		keywords: []string{
			"mild fever",
			"headache",
			"nausea",
			"body ache",
			"fatigue",
			"dizziness",
			"mild cough",
		},
	},
}

var lowTier = triageTier{
	severity:  models.SeverityLow,
	urgency:   35,
	diagnosis: "Monitor and follow up if symptoms persist",
}

const (
	multiSymptomSegments = 3
	multiSymptomBonus    = 15

	actionEmergency = "Call 911 immediately"
	actionProvider  = "See a healthcare provider"
)

// TriageSymptom 基于关键词的症状分诊
// 对任意输入都返回结果，无法识别的描述落入低紧急度
func TriageSymptom(description string) models.SymptomTriageResult {
	lower := strings.ToLower(description)

	tier := matchTier(lower)
	urgency := tier.urgency
	diagnoses := []string{tier.diagnosis}

	// 逗号分隔超过 3 段视为多症状
	if len(strings.Split(description, ",")) > multiSymptomSegments {
		urgency += multiSymptomBonus
		if urgency > maxRiskScore {
			urgency = maxRiskScore
		}
	}

	// 补充诊断提示（相互独立）
	hasFever := strings.Contains(lower, "fever")
	if hasFever {
		diagnoses = append(diagnoses, "Possible infection/flu")
	}
	if strings.Contains(lower, "cough") {
		diagnoses = append(diagnoses, "Possible respiratory issue")
	}
	if hasFever && strings.Contains(lower, "headache") {
		diagnoses = append(diagnoses, "Possible meningitis")
	}
	if strings.Contains(lower, "chest pain") {
		diagnoses = append(diagnoses, "Cardiac evaluation needed")
	}

	action := actionProvider
	if tier.severity == models.SeverityCritical {
		action = actionEmergency
	}

	return models.SymptomTriageResult{
		UrgencyScore:       urgency,
		Severity:           tier.severity,
		PotentialDiagnoses: diagnoses,
		RecommendedAction:  action,
	}
}

func matchTier(lower string) triageTier {
	for _, tier := range triageTiers {
		for _, kw := range tier.keywords {
			if strings.Contains(lower, kw) {
				return tier
			}
		}
	}
	return lowTier
}
