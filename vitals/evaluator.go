package vitals

import (
	"fmt"
	"strconv"
)

// Breach is a single measurement outside of its safe range
type Breach struct {
	Condition string
	Field     string
	Value     float64
}

type threshold struct {
	condition string
	field     string
	value     func(m Measurements) *float64
	breached  func(v float64) bool
}

func supine(get func(bp *SupineBloodPressure) *float64) func(m Measurements) *float64 {
	return func(m Measurements) *float64 {
		if m.BloodPressureSupine == nil {
			return nil
		}
		return get(m.BloodPressureSupine)
	}
}

func above(limit float64) func(v float64) bool {
	return func(v float64) bool { return v > limit }
}

func below(limit float64) func(v float64) bool {
	return func(v float64) bool { return v < limit }
}

func atMost(limit float64) func(v float64) bool {
	return func(v float64) bool { return v <= limit }
}

// Evaluation order is significant, breaches are reported in this order
var thresholds = []threshold{
	{"body temperature", "bodyTemperature", func(m Measurements) *float64 { return m.BodyTemperature }, above(37.5)},
	{"WBC", "wbc", func(m Measurements) *float64 { return m.Wbc }, below(5000)},
	{"PLT", "plt", func(m Measurements) *float64 { return m.Plt }, below(130000)},
	{"HCT PVC", "hctPvc", func(m Measurements) *float64 { return m.HctPvc }, above(20)},
	{"Supine Systolic BP", "bloodPressureSupine.systolic", supine(func(bp *SupineBloodPressure) *float64 { return bp.Systolic }), below(90)},
	{"MAP", "bloodPressureSupine.meanArterialPressure", supine(func(bp *SupineBloodPressure) *float64 { return bp.MeanArterialPressure }), below(60)},
	{"Pulse Pressure", "bloodPressureSupine.pulsePressure", supine(func(bp *SupineBloodPressure) *float64 { return bp.PulsePressure }), atMost(20)},
	{"Pulse Rate", "pulseRate", func(m Measurements) *float64 { return m.PulseRate }, above(100)},
	{"Respiratory Rate", "respiratoryRate", func(m Measurements) *float64 { return m.RespiratoryRate }, above(15)},
	{"CRFT", "capillaryRefillTime", func(m Measurements) *float64 { return m.CapillaryRefillTime }, above(2.5)},
}

// Evaluate returns the breached conditions of the measurements. Absent measurements never breach.
func Evaluate(m Measurements) []Breach {
	var breaches []Breach
	for _, t := range thresholds {
		v := t.value(m)
		if v == nil || !t.breached(*v) {
			continue
		}
		breaches = append(breaches, Breach{
			Condition: t.condition,
			Field:     t.field,
			Value:     *v,
		})
	}
	return breaches
}

func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func BreachMessage(patientName string, breach Breach) string {
	return fmt.Sprintf("%s's %s is abnormal - %s", patientName, breach.Condition, FormatValue(breach.Value))
}
