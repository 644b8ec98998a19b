package bracket

import (
	"errors"
	"testing"
)

var qualifiers = []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8"}

func seeded(t *testing.T) *Bracket {
	t.Helper()
	b := New()
	if err := b.Seed(qualifiers); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return b
}

func TestSeed(t *testing.T) {
	t.Run("pairs adjacent qualifiers", func(t *testing.T) {
		b := seeded(t)
		for i, code := range []string{"QF1", "QF2", "QF3", "QF4"} {
			slot, ok := b.Slot(code)
			if !ok {
				t.Fatalf("missing slot %s", code)
			}
			if slot.Home != qualifiers[2*i] || slot.Away != qualifiers[2*i+1] {
				t.Errorf("%s = %s vs %s, want %s vs %s",
					code, slot.Home, slot.Away, qualifiers[2*i], qualifiers[2*i+1])
			}
		}
	})

	t.Run("leaves later rounds as placeholders", func(t *testing.T) {
		b := seeded(t)
		for _, code := range []string{"SF1", "SF2", "FINAL"} {
			slot, _ := b.Slot(code)
			if !IsPlaceholder(slot.Home) || !IsPlaceholder(slot.Away) {
				t.Errorf("%s already has teams: %s vs %s", code, slot.Home, slot.Away)
			}
		}
	})

	t.Run("rejects short qualifier lists", func(t *testing.T) {
		err := New().Seed(qualifiers[:5])
		if !errors.Is(err, ErrInsufficientQualifiers) {
			t.Errorf("err = %v, want ErrInsufficientQualifiers", err)
		}
	})
}

func TestReportResult(t *testing.T) {
	t.Run("winner advances to the parent slot", func(t *testing.T) {
		b := seeded(t)
		if err := b.ReportResult("QF1", 2, 1); err != nil {
			t.Fatalf("ReportResult QF1: %v", err)
		}
		if err := b.ReportResult("QF2", 0, 3); err != nil {
			t.Fatalf("ReportResult QF2: %v", err)
		}

		sf1, _ := b.Slot("SF1")
		if sf1.Home != "t1" || sf1.Away != "t4" {
			t.Errorf("SF1 = %s vs %s, want t1 vs t4", sf1.Home, sf1.Away)
		}
	})

	t.Run("full run crowns a champion", func(t *testing.T) {
		b := seeded(t)
		// Home side wins every match.
		for _, code := range SlotCodes() {
			if err := b.ReportResult(code, 1, 0); err != nil {
				t.Fatalf("ReportResult %s: %v", code, err)
			}
		}
		champion, ok := b.Champion()
		if !ok {
			t.Fatal("no champion after the final")
		}
		if champion != "t1" {
			t.Errorf("champion = %s, want t1", champion)
		}
	})

	t.Run("no champion before the final", func(t *testing.T) {
		b := seeded(t)
		if _, ok := b.Champion(); ok {
			t.Error("champion reported before any result")
		}
	})

	t.Run("rejects draws", func(t *testing.T) {
		b := seeded(t)
		if err := b.ReportResult("QF1", 1, 1); !errors.Is(err, ErrDrawnKnockout) {
			t.Errorf("err = %v, want ErrDrawnKnockout", err)
		}
	})

	t.Run("rejects results for unfilled slots", func(t *testing.T) {
		b := seeded(t)
		if err := b.ReportResult("SF1", 1, 0); !errors.Is(err, ErrSlotNotFilled) {
			t.Errorf("err = %v, want ErrSlotNotFilled", err)
		}
	})

	t.Run("rejects unknown slot codes", func(t *testing.T) {
		b := seeded(t)
		if err := b.ReportResult("QF9", 1, 0); !errors.Is(err, ErrUnknownSlot) {
			t.Errorf("err = %v, want ErrUnknownSlot", err)
		}
	})
}

func TestSetTeams(t *testing.T) {
	b := New()
	if err := b.SetTeams("SF1", "t1", "t4"); err != nil {
		t.Fatalf("SetTeams: %v", err)
	}
	if err := b.ReportResult("SF1", 2, 0); err != nil {
		t.Fatalf("ReportResult: %v", err)
	}
	final, _ := b.Slot("FINAL")
	if final.Home != "t1" {
		t.Errorf("FINAL home = %s, want t1", final.Home)
	}
}

func TestIsPlaceholder(t *testing.T) {
	if !IsPlaceholder("QF1_HOME") || !IsPlaceholder("FINAL_AWAY") {
		t.Error("slot identifiers not detected as placeholders")
	}
	if IsPlaceholder("t1") || IsPlaceholder("") {
		t.Error("real team identifiers flagged as placeholders")
	}
}
