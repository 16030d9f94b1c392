package models

import "time"

// VitalReading 生命体征读数（对应 vital_signs 表）
type VitalReading struct {
	ID               string    `json:"id" db:"id"`
	PatientID        string    `json:"patient_id" db:"patient_id"`
	Systolic         int       `json:"systolic" db:"systolic"`                                 // mmHg
	Diastolic        int       `json:"diastolic" db:"diastolic"`                               // mmHg
	HeartRate        int       `json:"heart_rate" db:"heart_rate"`                             // bpm
	Temperature      float64   `json:"temperature" db:"temperature"`                           // 摄氏度
	BloodGlucose     *float64  `json:"blood_glucose,omitempty" db:"blood_glucose"`             // mg/dL
	OxygenSaturation *float64  `json:"oxygen_saturation,omitempty" db:"oxygen_saturation"`     // SpO2 %
	RespiratoryRate  *int      `json:"respiratory_rate,omitempty" db:"respiratory_rate"`       // 次/分
	RecordedAt       time.Time `json:"recorded_at" db:"recorded_at"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// Validate 校验读数（必填项为正，所有数值非负）
func (v *VitalReading) Validate() error {
	if v.PatientID == "" {
		return invalid("patient_id", "required")
	}
	if v.Systolic <= 0 || v.Diastolic <= 0 || v.HeartRate <= 0 || v.Temperature <= 0 {
		return invalid("vitals", "systolic, diastolic, heart_rate and temperature are required")
	}
	if v.BloodGlucose != nil && *v.BloodGlucose < 0 {
		return invalid("blood_glucose", "must be non-negative")
	}
	if v.OxygenSaturation != nil && (*v.OxygenSaturation < 0 || *v.OxygenSaturation > 100) {
		return invalid("oxygen_saturation", "must be between 0 and 100")
	}
	if v.RespiratoryRate != nil && *v.RespiratoryRate < 0 {
		return invalid("respiratory_rate", "must be non-negative")
	}
	return nil
}
