package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgeLevelRank(t *testing.T) {
	assert.Less(t, LevelBronze.Rank(), LevelSilver.Rank())
	assert.Less(t, LevelSilver.Rank(), LevelGold.Rank())
	assert.Less(t, LevelGold.Rank(), LevelDiamond.Rank())
	assert.Zero(t, BadgeLevel("plastic").Rank())
}

func TestContentItemDedupeKey(t *testing.T) {
	post := ContentItem{ID: 42, Kind: KindPost}
	assert.Equal(t, "post:42", post.DedupeKey())

	collection := ContentItem{ID: 7, Kind: KindCollection}
	assert.Equal(t, "collection:7", collection.DedupeKey())
}

func TestUserBadgeSlot(t *testing.T) {
	dedupe := "post:42"
	withKey := UserBadge{UserRef: "alice", BadgeKey: "good-question", DedupeKey: &dedupe}
	assert.Equal(t, "alice/good-question/post:42", withKey.Slot())

	oneTime := UserBadge{UserRef: "alice", BadgeKey: "solution-author"}
	assert.Equal(t, "alice/solution-author", oneTime.Slot())
}

func TestStringArrayRoundTrip(t *testing.T) {
	arr := StringArray{"go", "databases", `quo"ted`}

	value, err := arr.Value()
	require.NoError(t, err)

	var scanned StringArray
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, arr, scanned)
}

func TestStringArrayScanEmptyAndNil(t *testing.T) {
	var arr StringArray
	require.NoError(t, arr.Scan("{}"))
	assert.Empty(t, arr)

	require.NoError(t, arr.Scan(nil))
	assert.Nil(t, arr)
}
