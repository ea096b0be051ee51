package aggregator

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
)

func TestGroupByWebsite_PreservesOrder(t *testing.T) {
	runs := []domain.RunRecord{
		{ID: "1", WebsiteName: "shop"},
		{ID: "2", WebsiteName: "blog"},
		{ID: "3"},
		{ID: "4", WebsiteName: "shop"},
		{ID: "5", WebsiteName: "blog"},
	}

	groups := GroupByWebsite(runs)
	assert.Equal(t, []string{"shop", "blog", domain.UnknownKey}, groups.Keys())

	shop, ok := groups.Get("shop")
	require.True(t, ok)
	assert.Equal(t, []string{"1", "4"}, ids(shop))

	unknown, ok := groups.Get(domain.UnknownKey)
	require.True(t, ok)
	assert.Equal(t, []string{"3"}, ids(unknown))

	data, err := json.Marshal(groups)
	require.NoError(t, err)
	assert.Regexp(t, `^\{"shop":\[.*\],"blog":\[.*\],"Unknown":\[.*\]\}$`, string(data))

	decoded := domain.NewRunGroups()
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.Equal(t, groups.Keys(), decoded.Keys())
}

func TestGroupByDate_SameLocalDay(t *testing.T) {
	runs := []domain.RunRecord{
		{ID: "a", CreatedAt: time.Date(2024, 1, 5, 1, 0, 0, 0, time.Local)},
		{ID: "b", CreatedAt: time.Date(2024, 1, 5, 23, 0, 0, 0, time.Local)},
		{ID: "c", CreatedAt: time.Date(2024, 1, 6, 0, 1, 0, 0, time.Local)},
		{ID: "d"},
	}

	groups := GroupByDate(runs)
	assert.Equal(t, []string{"2024-01-05", "2024-01-06", domain.UnknownKey}, groups.Keys())

	day, _ := groups.Get("2024-01-05")
	assert.Equal(t, []string{"a", "b"}, ids(day))
}

func TestGroupByDateIn_UsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	run := domain.RunRecord{ID: "x", CreatedAt: time.Date(2024, 1, 5, 20, 0, 0, 0, time.UTC)}

	assert.Equal(t, []string{"2024-01-05"}, GroupByDateIn([]domain.RunRecord{run}, time.UTC).Keys())
	assert.Equal(t, []string{"2024-01-06"}, GroupByDateIn([]domain.RunRecord{run}, tokyo).Keys())
}

func TestParseDay_MatchesDayKeys(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	run := domain.RunRecord{ID: "x", CreatedAt: time.Date(2024, 1, 5, 20, 0, 0, 0, time.UTC)}

	start, err := ParseDay("2024-01-06", tokyo)
	require.NoError(t, err)
	end := EndOfDay(start)

	assert.Equal(t, time.Date(2024, 1, 6, 0, 0, 0, 0, tokyo), start)
	assert.Equal(t, time.Date(2024, 1, 6, 23, 59, 59, 999999999, tokyo), end)
	assert.Equal(t, "2024-01-06", dayKey(run.CreatedAt, tokyo))
	assert.False(t, run.CreatedAt.Before(start))
	assert.False(t, run.CreatedAt.After(end))

	_, err = ParseDay("06/01/2024", tokyo)
	assert.Error(t, err)
}

func TestGroupBy_DoesNotMutateInput(t *testing.T) {
	runs := []domain.RunRecord{{ID: "1"}, {ID: "2", WebsiteName: "x"}}
	GroupByWebsite(runs)
	GroupByDate(runs)
	assert.Equal(t, []domain.RunRecord{{ID: "1"}, {ID: "2", WebsiteName: "x"}}, runs)
}

func ids(runs []domain.RunRecord) []string {
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = r.ID
	}
	return out
}
