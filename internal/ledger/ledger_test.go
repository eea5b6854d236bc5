package ledger

import "testing"

func mustSchedule(t *testing.T, fee, tax string) Schedule {
	t.Helper()
	s, err := NewSchedule(fee, tax)
	if err != nil {
		t.Fatalf("NewSchedule(%s, %s): %v", fee, tax, err)
	}
	return s
}

func TestComputeFeesReferenceFixture(t *testing.T) {
	s := mustSchedule(t, "10", "10")
	fees, err := ComputeFees(75000, s)
	if err != nil {
		t.Fatalf("ComputeFees: %v", err)
	}
	if fees.PlatformFee != 7500 {
		t.Errorf("platform fee = %d, want 7500", fees.PlatformFee)
	}
	if fees.Tax != 8250 {
		t.Errorf("tax = %d, want 8250", fees.Tax)
	}
	if fees.Total != 90750 {
		t.Errorf("total = %d, want 90750", fees.Total)
	}
	if fees.NetPayout != 67500 {
		t.Errorf("net payout = %d, want 67500", fees.NetPayout)
	}
}

func TestComputeFeesFloorPoints(t *testing.T) {
	// 33,333 * 10% = 3,333.3 -> 3,333; (33,333+3,333) * 10% = 3,666.6 -> 3,666
	s := mustSchedule(t, "10", "10")
	fees, err := ComputeFees(33333, s)
	if err != nil {
		t.Fatalf("ComputeFees: %v", err)
	}
	if fees.PlatformFee != 3333 {
		t.Errorf("platform fee = %d, want 3333", fees.PlatformFee)
	}
	if fees.Tax != 3666 {
		t.Errorf("tax = %d, want 3666", fees.Tax)
	}
	if fees.Total != 33333+3333+3666 {
		t.Errorf("total = %d, want %d", fees.Total, 33333+3333+3666)
	}
}

func TestComputeFeesTotalNeverBelowGross(t *testing.T) {
	s := mustSchedule(t, "10", "10")
	for _, gross := range []int64{1, 9, 999, 1000, 50000, 100000, 75000} {
		fees, err := ComputeFees(gross, s)
		if err != nil {
			t.Fatalf("ComputeFees(%d): %v", gross, err)
		}
		if fees.Total < gross {
			t.Errorf("gross %d: total %d below gross", gross, fees.Total)
		}
		again, _ := ComputeFees(gross, s)
		if again != fees {
			t.Errorf("gross %d: not deterministic: %+v vs %+v", gross, fees, again)
		}
	}
}

func TestComputeFeesRejectsNonPositive(t *testing.T) {
	s := mustSchedule(t, "10", "10")
	for _, gross := range []int64{0, -1, -75000} {
		if _, err := ComputeFees(gross, s); err != ErrInvalidAmount {
			t.Errorf("ComputeFees(%d) error = %v, want ErrInvalidAmount", gross, err)
		}
	}
}

func TestComputeFeesZeroRates(t *testing.T) {
	s := mustSchedule(t, "0", "0")
	fees, err := ComputeFees(75000, s)
	if err != nil {
		t.Fatalf("ComputeFees: %v", err)
	}
	if fees.PlatformFee != 0 || fees.Tax != 0 || fees.Total != 75000 || fees.NetPayout != 75000 {
		t.Errorf("zero rates: %+v", fees)
	}
}

func TestNewScheduleRejectsOutOfRange(t *testing.T) {
	for _, tc := range [][2]string{{"-1", "10"}, {"10", "101"}, {"abc", "10"}} {
		if _, err := NewSchedule(tc[0], tc[1]); err == nil {
			t.Errorf("NewSchedule(%s, %s) expected error", tc[0], tc[1])
		}
	}
}
