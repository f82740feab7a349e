package tier

import (
	"errors"
	"testing"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/shopspring/decimal"
)

func testTier(id string, level int, min string) model.Tier {
	return model.Tier{
		BaseModel:          model.BaseModel{ID: id},
		Name:               id,
		Level:              level,
		MinMonthlySpending: decimal.RequireFromString(min),
		PointsMultiplier:   decimal.NewFromInt(1),
		IsActive:           true,
	}
}

func TestLadderResolve(t *testing.T) {
	ladder, err := NewLadder([]model.Tier{testTier("B", 2, "1000"), testTier("A", 1, "5000")})
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		spend string
		want  string
	}{
		{"0", ""},
		{"999.99", ""},
		{"1000", "B"},
		{"3000", "B"},
		{"5000", "A"},
		{"12000", "A"},
	}
	for _, c := range cases {
		got := ladder.Resolve(decimal.RequireFromString(c.spend))
		gotID := ""
		if got != nil {
			gotID = got.ID
		}
		if gotID != c.want {
			t.Errorf("Resolve(%s) = %q, want %q", c.spend, gotID, c.want)
		}
	}
}

func TestLadderResolveIsMonotonic(t *testing.T) {
	ladder, err := NewLadder([]model.Tier{
		testTier("gold", 1, "10000"),
		testTier("silver", 2, "2500"),
		testTier("bronze", 3, "500"),
	})
	if err != nil {
		t.Fatal(err)
	}

	var prev *model.Tier
	for spend := int64(0); spend <= 15000; spend += 250 {
		cur := ladder.Resolve(decimal.NewFromInt(spend))
		if Better(prev, cur) {
			t.Fatalf("spend %d resolved to a worse tier than a smaller spend", spend)
		}
		prev = cur
	}
}

func TestLadderSkipsInactiveAndRejectsDuplicates(t *testing.T) {
	inactive := testTier("old", 1, "0")
	inactive.IsActive = false
	ladder, err := NewLadder([]model.Tier{inactive, testTier("B", 2, "1000")})
	if err != nil {
		t.Fatal(err)
	}
	if got := ladder.Resolve(decimal.Zero); got != nil {
		t.Errorf("inactive tier resolved: %s", got.ID)
	}
	if ladder.ByID("old") != nil {
		t.Error("ByID returned an inactive tier")
	}

	_, err = NewLadder([]model.Tier{testTier("x", 1, "100"), testTier("y", 1, "200")})
	if !errors.Is(err, ErrDuplicateLevel) {
		t.Fatalf("err = %v, want ErrDuplicateLevel", err)
	}
}

func TestBetter(t *testing.T) {
	a := testTier("A", 1, "5000")
	b := testTier("B", 2, "1000")
	if !Better(&a, &b) || Better(&b, &a) {
		t.Error("level 1 should beat level 2")
	}
	if !Better(&b, nil) || Better(nil, &b) || Better(nil, nil) {
		t.Error("any tier should beat no tier")
	}
}

func TestPointsAndDiscount(t *testing.T) {
	b := testTier("B", 2, "1000")
	b.PointsMultiplier = decimal.RequireFromString("1.5")
	b.DiscountPercentage = decimal.RequireFromString("5")

	if got := PointsFor(decimal.RequireFromString("99.99"), nil); !got.Equal(decimal.NewFromInt(99)) {
		t.Errorf("no tier points = %s", got)
	}
	if got := PointsFor(decimal.RequireFromString("10.5"), &b); !got.Equal(decimal.NewFromInt(15)) {
		t.Errorf("tier B points = %s", got)
	}
	if got := Discount(&b, decimal.RequireFromString("250.10")); !got.Equal(decimal.RequireFromString("12.51")) {
		t.Errorf("tier B discount = %s", got)
	}
	if got := Discount(nil, decimal.NewFromInt(100)); !got.IsZero() {
		t.Errorf("no tier discount = %s", got)
	}
}
