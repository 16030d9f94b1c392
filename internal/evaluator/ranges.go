package evaluator

// Range 参考范围（闭区间）
type Range struct {
	Min float64
	Max float64
}

// Below 低于下限
func (r Range) Below(v float64) bool { return v < r.Min }

// Above 高于上限
func (r Range) Above(v float64) bool { return v > r.Max }

// 生命体征参考范围（简化的成人静息范围，血糖为空腹值）
var (
	SystolicRange         = Range{Min: 90, Max: 120}
	DiastolicRange        = Range{Min: 60, Max: 80}
	HeartRateRange        = Range{Min: 60, Max: 100}
	TemperatureRange      = Range{Min: 36.5, Max: 37.5}
	BloodGlucoseRange     = Range{Min: 70, Max: 130}
	OxygenSaturationRange = Range{Min: 95, Max: 100}
)

// 生命体征异常权重
const (
	weightSystolicLow     = 15
	weightSystolicHigh    = 20
	weightDiastolicHigh   = 15
	weightHeartRateLow    = 10
	weightHeartRateHigh   = 15
	weightTemperatureLow  = 20
	weightTemperatureHigh = 15
	weightGlucoseLow      = 25
	weightGlucoseHigh     = 15
	weightSpO2Low         = 25
)

// 情绪阈值
const (
	HighAnxietyLevel     = 8
	LowMoodLevel         = 2
	PoorSleepQuality     = 2
	ShortSleepHours      = 5.0
	HighStressLevel      = 8
	MoodSwingDelta       = 3
	AnxietySpikeDelta    = 4
	weightHighAnxiety    = 20
	weightLowMood        = 25
	weightSleepDeprived  = 20
	weightHighStress     = 15
	weightMoodSwing      = 10
	weightAnxietySpike   = 15
	maxRiskScore         = 100
)

// 综合评分常量
const (
	defaultVitalScore   = 60 // 无生命体征记录
	defaultSymptomScore = 90 // 无症状记录
	defaultMentalScore  = 70 // 无情绪记录
	minDomainScore      = 20
	trendThreshold      = 5.0
)

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > maxRiskScore {
		return maxRiskScore
	}
	return v
}
