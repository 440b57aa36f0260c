// Package progress derives the read-only health of a goal: its bucket, how
// urgent its deadline is, and checklist completion. Everything here is a pure
// function of the goal snapshot passed in and is recomputed on every call.
package progress

import (
	"fmt"
	"math"

	"github.com/templui/folio/internal/datemath"
	"github.com/templui/folio/internal/model"
)

type Bucket string

const (
	BucketNotStarted Bucket = "not_started"
	BucketInProgress Bucket = "in_progress"
	BucketCompleted  Bucket = "completed"
)

type Level string

const (
	LevelNormal   Level = "normal"
	LevelCritical Level = "critical"
)

// criticalDays is the inclusive threshold below which a deadline is critical.
const criticalDays = 3

// BucketOf classifies a goal. A full progress signal wins over the zero
// check, so a goal at 100% is completed even without any steps.
func BucketOf(g model.Goal) Bucket {
	if g.ProgressPercent >= 100 || g.StepsProgressPercent >= 100 {
		return BucketCompleted
	}
	if g.ProgressPercent == 0 && g.StepsProgressPercent == 0 {
		return BucketNotStarted
	}
	return BucketInProgress
}

type Urgency struct {
	DaysLeft int    `json:"days_left" yaml:"days_left"`
	Label    string `json:"label" yaml:"label"`
	Level    Level  `json:"level" yaml:"level"`
}

func UrgencyOf(g model.Goal) Urgency {
	days := datemath.DaysUntil(g.Deadline)

	level := LevelNormal
	if days <= criticalDays {
		level = LevelCritical
	}

	return Urgency{
		DaysLeft: days,
		Label:    urgencyLabel(days),
		Level:    level,
	}
}

func urgencyLabel(days int) string {
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "1 day left"
	case days > 1:
		return fmt.Sprintf("%d days left", days)
	case days == -1:
		return "1 day overdue"
	default:
		return fmt.Sprintf("%d days overdue", -days)
	}
}

// StepsPercent is the rounded share of done steps, 0 when there are none.
func StepsPercent(steps []model.Step) int {
	done := 0
	for _, s := range steps {
		if s.IsDone {
			done++
		}
	}
	return Percent(done, len(steps))
}

// Percent returns part/total as a rounded percentage clamped to 0..100.
func Percent(part, total int) int {
	if total <= 0 || part <= 0 {
		return 0
	}
	p := int(math.Round(float64(part) * 100 / float64(total)))
	return min(p, 100)
}

// View bundles a goal with everything derived from it for rendering.
type View struct {
	Goal    model.Goal `json:"goal" yaml:"goal"`
	Bucket  Bucket     `json:"bucket" yaml:"bucket"`
	Urgency Urgency    `json:"urgency" yaml:"urgency"`
}

func ViewOf(g model.Goal) View {
	return View{
		Goal:    g,
		Bucket:  BucketOf(g),
		Urgency: UrgencyOf(g),
	}
}

type Buckets struct {
	NotStarted []View `json:"not_started" yaml:"not_started"`
	InProgress []View `json:"in_progress" yaml:"in_progress"`
	Completed  []View `json:"completed" yaml:"completed"`
}

func (b Buckets) Len() int {
	return len(b.NotStarted) + len(b.InProgress) + len(b.Completed)
}

// Partition groups goals by bucket, keeping the input order inside each
// bucket.
func Partition(goals []model.Goal) Buckets {
	b := Buckets{
		NotStarted: []View{},
		InProgress: []View{},
		Completed:  []View{},
	}
	for _, g := range goals {
		v := ViewOf(g)
		switch v.Bucket {
		case BucketCompleted:
			b.Completed = append(b.Completed, v)
		case BucketInProgress:
			b.InProgress = append(b.InProgress, v)
		default:
			b.NotStarted = append(b.NotStarted, v)
		}
	}
	return b
}
