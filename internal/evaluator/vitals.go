package evaluator

import "healthpulse-engine/internal/models"

// AnalysisResult 单领域分析结果
type AnalysisResult struct {
	Anomalies []string `json:"anomalies"`
	RiskScore int      `json:"risk_score"` // 0-100
}

// HasAnomalies 是否存在异常
func (r AnalysisResult) HasAnomalies() bool {
	return len(r.Anomalies) > 0
}

// AnalyzeVitals 对照参考范围检查生命体征，每项越界累加固定权重
// 血糖与血氧仅在读数存在时检查
func AnalyzeVitals(v models.VitalReading) AnalysisResult {
	var anomalies []string
	risk := 0

	flag := func(msg string, weight int) {
		anomalies = append(anomalies, msg)
		risk += weight
	}

	switch systolic := float64(v.Systolic); {
	case SystolicRange.Below(systolic):
		flag("Low blood pressure (systolic)", weightSystolicLow)
	case SystolicRange.Above(systolic):
		flag("Elevated blood pressure (systolic)", weightSystolicHigh)
	}

	if DiastolicRange.Above(float64(v.Diastolic)) {
		flag("Elevated blood pressure (diastolic)", weightDiastolicHigh)
	}

	switch hr := float64(v.HeartRate); {
	case HeartRateRange.Below(hr):
		flag("Low heart rate (bradycardia)", weightHeartRateLow)
	case HeartRateRange.Above(hr):
		flag("Elevated heart rate (tachycardia)", weightHeartRateHigh)
	}

	switch {
	case TemperatureRange.Below(v.Temperature):
		flag("Low body temperature (hypothermia)", weightTemperatureLow)
	case TemperatureRange.Above(v.Temperature):
		flag("Elevated temperature (fever)", weightTemperatureHigh)
	}

	if v.BloodGlucose != nil {
		switch {
		case BloodGlucoseRange.Below(*v.BloodGlucose):
			flag("Low blood glucose (hypoglycemia)", weightGlucoseLow)
		case BloodGlucoseRange.Above(*v.BloodGlucose):
			flag("High blood glucose (hyperglycemia)", weightGlucoseHigh)
		}
	}

	if v.OxygenSaturation != nil && OxygenSaturationRange.Below(*v.OxygenSaturation) {
		flag("Low oxygen saturation", weightSpO2Low)
	}

	return AnalysisResult{
		Anomalies: anomalies,
		RiskScore: clampScore(risk),
	}
}
