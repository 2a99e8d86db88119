package tracknumber

import "testing"

// TestComputeHeuristicMetaSpaceDashSpace pins down a quirk inherited from
// the original: SpaceDashSpace's own trim only ever strips a leading '.',
// which never appears after a dash has already been trimmed to, so the
// dash itself survives into the title.
func TestComputeHeuristicMetaSpaceDashSpace(t *testing.T) {
	got := ComputeHeuristicMeta([]string{
		"01 - Opening",
		"02 - Middle",
		"03 - Closing",
	})
	if got == nil {
		t.Fatal("expected heuristic meta, got nil")
	}
	want := []string{"- Opening", "- Middle", "- Closing"}
	for i, meta := range got {
		if meta.Number != i+1 {
			t.Errorf("item %d: Number = %d, want %d", i, meta.Number, i+1)
		}
		if meta.Title != want[i] {
			t.Errorf("item %d: Title = %q, want %q", i, meta.Title, want[i])
		}
	}
}

func TestComputeHeuristicMetaDotSpace(t *testing.T) {
	got := ComputeHeuristicMeta([]string{
		"1. First",
		"2. Second",
	})
	if got == nil {
		t.Fatal("expected heuristic meta, got nil")
	}
	if got[0].Title != "First" || got[1].Title != "Second" {
		t.Fatalf("unexpected titles: %+v", got)
	}
}

func TestComputeHeuristicMetaRejectsNonMonotonic(t *testing.T) {
	got := ComputeHeuristicMeta([]string{"01 - A", "03 - B"})
	if got != nil {
		t.Fatalf("expected nil for a gap in numbering, got %+v", got)
	}
}

func TestComputeHeuristicMetaRejectsMissingLeadingNumber(t *testing.T) {
	got := ComputeHeuristicMeta([]string{"Intro", "02 - Track"})
	if got != nil {
		t.Fatalf("expected nil when a stem has no leading digits, got %+v", got)
	}
}

func TestComputeHeuristicMetaRejectsStartingAboveOne(t *testing.T) {
	got := ComputeHeuristicMeta([]string{"02 - A", "03 - B"})
	if got != nil {
		t.Fatalf("expected nil when numbering doesn't start at 0 or 1, got %+v", got)
	}
}

func TestComputeHeuristicMetaToleratesOutlierAtScale(t *testing.T) {
	stems := make([]string, 0, 12)
	stems = append(stems, "01 Track")
	for i := 2; i <= 12; i++ {
		stems = append(stems, string(rune('0'+i/10))+string(rune('0'+i%10))+" - Track")
	}
	got := ComputeHeuristicMeta(stems)
	if got == nil {
		t.Fatal("expected a majority separator pattern despite one outlier")
	}
}

func TestComputeHeuristicMetaNoMajoritySeparator(t *testing.T) {
	got := ComputeHeuristicMeta([]string{
		"01 - A",
		"02. B",
		"03: C",
	})
	if got != nil {
		t.Fatalf("expected nil with no majority separator, got %+v", got)
	}
}
