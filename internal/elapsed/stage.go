package elapsed

import "fmt"

// Stage is the flower's growth stage, 1 through 5.
type Stage int

const (
	StageMin Stage = 1
	StageMax Stage = 5
)

// Scheme holds the four ascending day thresholds at which stages 2..5 begin.
type Scheme struct {
	Name       string
	Thresholds [4]int
}

var (
	// SchemeFlower is the default: 30, 90, 365 and 730 days.
	SchemeFlower = Scheme{Name: "flower", Thresholds: [4]int{30, 90, 365, 730}}
	// SchemeRose grows faster: 30, 90, 180 and 365 days.
	SchemeRose = Scheme{Name: "rose", Thresholds: [4]int{30, 90, 180, 365}}
)

// SchemeByName resolves "flower" (or "") and "rose".
func SchemeByName(name string) (Scheme, error) {
	switch name {
	case "", SchemeFlower.Name:
		return SchemeFlower, nil
	case SchemeRose.Name:
		return SchemeRose, nil
	default:
		return Scheme{}, fmt.Errorf("elapsed: unknown stage scheme %q", name)
	}
}

// Classify maps approximate elapsed days to a stage using SchemeFlower.
func Classify(totalDays int) Stage { return SchemeFlower.Classify(totalDays) }

// Classify maps approximate elapsed days to a stage. Intervals are
// left-closed, right-open.
func (s Scheme) Classify(totalDays int) Stage {
	stage := StageMin
	for _, t := range s.Thresholds {
		if totalDays >= t {
			stage++
		}
	}
	return stage
}

// Size is the flower's rendered size in pixels.
func (s Stage) Size() int { return 24 + (int(s.clamp())-1)*6 }

// PetalCount is twice the stage, capped at eight.
func (s Stage) PetalCount() int {
	n := int(s.clamp()) * 2
	if n > 8 {
		n = 8
	}
	return n
}

var stageColors = [...]string{"light-pink", "pink", "light-purple", "purple", "purple"}

// Color is the palette token for the stage.
func (s Stage) Color() string { return stageColors[s.clamp()-1] }

var stageDescriptions = [...]string{
	"brotando",
	"crescendo",
	"florescendo",
	"em plena floração",
	"completamente florescido",
}

// Description is the caption shown under the flower.
func (s Stage) Description() string { return stageDescriptions[s.clamp()-1] }

func (s Stage) clamp() Stage {
	if s < StageMin {
		return StageMin
	}
	if s > StageMax {
		return StageMax
	}
	return s
}
