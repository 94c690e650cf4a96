package jsonout

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dejo1307/objchdr/internal/objc"
	"github.com/dejo1307/objchdr/internal/scanner"
)

func TestRender_RoundTrip(t *testing.T) {
	res := scanner.Scan("Feed.h", `
typedef NS_ENUM(NSUInteger, FeedKind) { FeedKindText = 1, FeedKindImage };
@interface FeedItem : NSObject <NSCoding>
@property (nonatomic, copy) NSString *title;
@property (nonatomic, strong) NSArray<NSDictionary *> *attachments;
@property (nonatomic, assign) FeedKind kind;
@end
`)
	snap := &objc.Snapshot{
		Classes:  res.Classes,
		Enums:    res.Enums,
		Insights: []objc.Insight{{Title: "Unresolved superclasses (1)", Confidence: 0.8}},
	}

	r := New("classes.json", "enums.json", "insights.json")
	assert.Equal(t, "json", r.Name())

	artifacts, err := r.Render(context.Background(), snap)
	require.NoError(t, err)
	require.Len(t, artifacts, 3)
	assert.Equal(t, "classes.json", artifacts[0].Name)
	assert.Equal(t, "enums.json", artifacts[1].Name)
	assert.Equal(t, "insights.json", artifacts[2].Name)

	var classes []*objc.Class
	require.NoError(t, json.Unmarshal(artifacts[0].Content, &classes))
	require.Len(t, classes, 1)
	assert.Equal(t, *res.Classes[0], *classes[0])

	var enums []*objc.Enum
	require.NoError(t, json.Unmarshal(artifacts[1].Content, &enums))
	require.Len(t, enums, 1)
	assert.Equal(t, *res.Enums[0], *enums[0])

	var insights []objc.Insight
	require.NoError(t, json.Unmarshal(artifacts[2].Content, &insights))
	require.Len(t, insights, 1)
	assert.Equal(t, "Unresolved superclasses (1)", insights[0].Title)

	// Re-rendering what was read back yields identical bytes.
	again, err := r.Render(context.Background(), &objc.Snapshot{Classes: classes, Enums: enums})
	require.NoError(t, err)
	assert.Equal(t, artifacts[0].Content, again[0].Content)
	assert.Equal(t, artifacts[1].Content, again[1].Content)
}

func TestRender_EmptyListsAreArrays(t *testing.T) {
	artifacts, err := New("c.json", "e.json", "i.json").Render(context.Background(), &objc.Snapshot{})
	require.NoError(t, err)
	for _, a := range artifacts {
		assert.JSONEq(t, "[]", string(a.Content), a.Name)
	}
}
