package service

import (
	"math/rand"
	"testing"

	"github.com/deppfellow/erp-gateway/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repair(id int64, repairOrderID any) *record.Row {
	return record.NewRow([]string{"id", "repairOrderId"}, []any{id, repairOrderID})
}

func deal(repairOrderID any, number int64) *record.Row {
	return record.NewRow([]string{"repairOrderId", "number"}, []any{repairOrderID, number})
}

func dealsOf(t *testing.T, row *record.Row) []BitrixDeal {
	t.Helper()
	value, ok := row.Get(BitrixDealsField)
	require.True(t, ok, "every repair must carry bitrixDeals")
	deals, ok := value.([]BitrixDeal)
	require.True(t, ok)
	return deals
}

func TestMergeBitrixDeals(t *testing.T) {
	t.Run("no deals gives empty lists", func(t *testing.T) {
		repairs := []*record.Row{repair(1, int64(10)), repair(2, int64(20))}

		merged := MergeBitrixDeals(repairs, nil)

		require.Len(t, merged, 2)
		for _, row := range merged {
			deals := dealsOf(t, row)
			assert.NotNil(t, deals)
			assert.Empty(t, deals)
		}
	})

	t.Run("keeps deal order", func(t *testing.T) {
		repairs := []*record.Row{repair(1, int64(10))}
		deals := []*record.Row{deal(int64(10), 3), deal(int64(20), 9), deal(int64(10), 1), deal(int64(10), 2)}

		merged := MergeBitrixDeals(repairs, deals)

		assert.Equal(t, []BitrixDeal{{Number: int64(3)}, {Number: int64(1)}, {Number: int64(2)}}, dealsOf(t, merged[0]))
	})

	t.Run("integer widths compare equal", func(t *testing.T) {
		repairs := []*record.Row{repair(1, int32(10))}
		deals := []*record.Row{deal(int64(10), 7)}

		merged := MergeBitrixDeals(repairs, deals)

		assert.Equal(t, []BitrixDeal{{Number: int64(7)}}, dealsOf(t, merged[0]))
	})

	t.Run("duplicates multiply", func(t *testing.T) {
		repairs := []*record.Row{repair(1, int64(10)), repair(1, int64(10))}
		deals := []*record.Row{deal(int64(10), 7), deal(int64(10), 7)}

		merged := MergeBitrixDeals(repairs, deals)

		require.Len(t, merged, 2)
		for _, row := range merged {
			assert.Len(t, dealsOf(t, row), 2)
		}
	})

	t.Run("missing or null key never matches", func(t *testing.T) {
		noKey := record.NewRow([]string{"id"}, []any{int64(1)})
		repairs := []*record.Row{noKey, repair(2, nil)}
		deals := []*record.Row{deal(nil, 7), record.NewRow([]string{"number"}, []any{int64(8)})}

		merged := MergeBitrixDeals(repairs, deals)

		assert.Empty(t, dealsOf(t, merged[0]))
		assert.Empty(t, dealsOf(t, merged[1]))
	})

	t.Run("text keys compare by equality", func(t *testing.T) {
		repairs := []*record.Row{repair(1, "RO-10"), repair(2, "RO-20")}
		deals := []*record.Row{deal("RO-10", 7), deal(int64(10), 8)}

		merged := MergeBitrixDeals(repairs, deals)

		assert.Equal(t, []BitrixDeal{{Number: int64(7)}}, dealsOf(t, merged[0]))
		assert.Empty(t, dealsOf(t, merged[1]))
	})

	t.Run("match count equals matching pairs", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))

		for round := 0; round < 50; round++ {
			repairs := make([]*record.Row, rng.Intn(8))
			for i := range repairs {
				repairs[i] = repair(int64(i), int64(rng.Intn(4)))
			}
			deals := make([]*record.Row, rng.Intn(8))
			for i := range deals {
				deals[i] = deal(int64(rng.Intn(4)), int64(i))
			}

			pairs := 0
			for _, r := range repairs {
				rk, _ := r.Get("repairOrderId")
				for _, d := range deals {
					dk, _ := d.Get("repairOrderId")
					if rk == dk {
						pairs++
					}
				}
			}

			merged := MergeBitrixDeals(repairs, deals)

			require.Len(t, merged, len(repairs))
			total := 0
			for _, row := range merged {
				total += len(dealsOf(t, row))
			}
			assert.Equal(t, pairs, total, "round %d", round)
		}
	})
}
