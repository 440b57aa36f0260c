package progress

import (
	"testing"

	"github.com/templui/folio/internal/datemath"
	"github.com/templui/folio/internal/model"
)

func TestBucketOf(t *testing.T) {
	tests := []struct {
		name     string
		progress int
		steps    int
		total    int
		want     Bucket
	}{
		{"untouched", 0, 0, 0, BucketNotStarted},
		{"untouched with steps", 0, 0, 4, BucketNotStarted},
		{"projects moving", 34, 0, 0, BucketInProgress},
		{"steps moving", 0, 50, 2, BucketInProgress},
		{"projects done", 100, 0, 0, BucketCompleted},
		{"steps done", 20, 100, 3, BucketCompleted},
		{"both done", 100, 100, 1, BucketCompleted},
		{"projects almost", 99, 99, 5, BucketInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := model.Goal{ProgressPercent: tt.progress, StepsProgressPercent: tt.steps, TotalSteps: tt.total}
			if got := BucketOf(g); got != tt.want {
				t.Errorf("BucketOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUrgencyOf(t *testing.T) {
	today := datemath.TodayISO()

	tests := []struct {
		offset int
		label  string
		level  Level
	}{
		{10, "10 days left", LevelNormal},
		{4, "4 days left", LevelNormal},
		{3, "3 days left", LevelCritical},
		{1, "1 day left", LevelCritical},
		{0, "Today", LevelCritical},
		{-1, "1 day overdue", LevelCritical},
		{-6, "6 days overdue", LevelCritical},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			u := UrgencyOf(model.Goal{Deadline: datemath.AddDays(today, tt.offset)})
			if u.DaysLeft != tt.offset {
				t.Errorf("DaysLeft = %d, want %d", u.DaysLeft, tt.offset)
			}
			if u.Label != tt.label {
				t.Errorf("Label = %q, want %q", u.Label, tt.label)
			}
			if u.Level != tt.level {
				t.Errorf("Level = %q, want %q", u.Level, tt.level)
			}
		})
	}
}

func TestStepsPercent(t *testing.T) {
	steps := []model.Step{{ID: 1, IsDone: true}, {ID: 2}, {ID: 3}}
	if got := StepsPercent(steps); got != 33 {
		t.Errorf("StepsPercent() = %d, want 33", got)
	}
	if got := StepsPercent(nil); got != 0 {
		t.Errorf("StepsPercent(nil) = %d, want 0", got)
	}
	steps[1].IsDone = true
	steps[2].IsDone = true
	if got := StepsPercent(steps); got != 100 {
		t.Errorf("StepsPercent(all done) = %d, want 100", got)
	}
}

func TestPartition(t *testing.T) {
	goals := []model.Goal{
		{ID: 1, ProgressPercent: 100},
		{ID: 2},
		{ID: 3, StepsProgressPercent: 50},
		{ID: 4},
	}

	b := Partition(goals)
	if b.Len() != len(goals) {
		t.Fatalf("Len() = %d, want %d", b.Len(), len(goals))
	}
	if len(b.NotStarted) != 2 || b.NotStarted[0].Goal.ID != 2 || b.NotStarted[1].Goal.ID != 4 {
		t.Errorf("NotStarted = %+v", b.NotStarted)
	}
	if len(b.InProgress) != 1 || b.InProgress[0].Goal.ID != 3 {
		t.Errorf("InProgress = %+v", b.InProgress)
	}
	if len(b.Completed) != 1 || b.Completed[0].Goal.ID != 1 {
		t.Errorf("Completed = %+v", b.Completed)
	}
}

func TestViewOf_Recomputes(t *testing.T) {
	g := model.Goal{ID: 7}
	if v := ViewOf(g); v.Bucket != BucketNotStarted {
		t.Fatalf("bucket = %q, want not_started", v.Bucket)
	}
	g.ProgressPercent = 34
	if v := ViewOf(g); v.Bucket != BucketInProgress {
		t.Errorf("bucket after progress = %q, want in_progress", v.Bucket)
	}
}
