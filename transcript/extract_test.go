package transcript

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractPlainText(t *testing.T) {
	md, records, relations := Extract("Just **markdown**, nothing else.")
	require.Equal(t, "Just **markdown**, nothing else.", md)
	require.Empty(t, records)
	require.Empty(t, relations)
}

func TestExtractRelations(t *testing.T) {
	md, records, relations := Extract("Hello\trelations:a,b")
	require.Equal(t, "Hello", md)
	require.Empty(t, records)
	require.Equal(t, []string{"a", "b"}, relations)
}

func TestExtractRelationsLastSeparatorWins(t *testing.T) {
	raw := "mentions \trelations: in prose\trelations:x, y ,"
	md, _, relations := Extract(raw)
	require.Equal(t, "mentions \trelations: in prose", md)
	require.Equal(t, []string{"x", "y"}, relations)
}

func TestExtractMissingRelationSegment(t *testing.T) {
	_, _, relations := Extract("no trailing list here")
	require.Empty(t, relations)
}

func TestExtractSingleBlock(t *testing.T) {
	raw := `before <view>{"name":"Search","status":"completed","result":"Done"}</view> after`
	md, records, relations := Extract(raw)

	require.Empty(t, relations)
	require.Len(t, records, 1)
	require.Equal(t, Record{Name: "Search", Status: StatusCompleted, Result: "Done"}, records[0])
	require.Equal(t, "before <toolblock>0</toolblock> after", md)
}

func TestExtractPreservesSourceOrder(t *testing.T) {
	var raw strings.Builder
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&raw, `text %d <view>{"name":"tool-%d","status":"running"}</view> `, i, i)
	}
	md, records, _ := Extract(raw.String())

	require.Len(t, records, 5)
	for i, rec := range records {
		require.Equal(t, fmt.Sprintf("tool-%d", i), rec.Name)
		token := fmt.Sprintf("<toolblock>%d</toolblock>", i)
		require.Contains(t, md, token)
	}
	// Dense indices in left-to-right order.
	last := -1
	for _, seg := range Segments(md) {
		if seg.IsRef {
			require.Equal(t, last+1, seg.Index)
			last = seg.Index
		}
	}
	require.Equal(t, 4, last)
}

func TestExtractMalformedBlockPassesThrough(t *testing.T) {
	raw := `<view>not-json</view>`
	md, records, _ := Extract(raw)
	require.Equal(t, raw, md)
	require.Empty(t, records)
}

func TestExtractMalformedAmongValid(t *testing.T) {
	raw := `a <view>{"name":"one","status":"completed"}</view>` +
		` b <view>{broken</view>` +
		` c <view>{"name":"two","status":"failed","err_msg":"boom"}</view>`
	md, records, _ := Extract(raw)

	require.Len(t, records, 2)
	require.Equal(t, "one", records[0].Name)
	require.Equal(t, "two", records[1].Name)
	require.Contains(t, md, "<view>{broken</view>")
	require.Contains(t, md, "<toolblock>0</toolblock>")
	require.Contains(t, md, "<toolblock>1</toolblock>")
}

func TestExtractEmptyObjectIsMalformed(t *testing.T) {
	raw := `<view>{}</view>`
	md, records, _ := Extract(raw)
	require.Equal(t, raw, md)
	require.Empty(t, records)
}

func TestExtractUnknownStatusDecodes(t *testing.T) {
	_, records, _ := Extract(`<view>{"name":"x","status":"paused"}</view>`)
	require.Len(t, records, 1)
	require.Equal(t, Status("paused"), records[0].Status)
	require.False(t, records[0].Status.Known())
}

func TestExtractUnterminatedBlockIsLiteral(t *testing.T) {
	raw := `start <view>{"name":"x","status":"running"} and no close`
	md, records, _ := Extract(raw)
	require.Equal(t, raw, md)
	require.Empty(t, records)
}

func TestExtractIgnoresLongerTagNames(t *testing.T) {
	raw := `<viewport>stuff</viewport> <view>{"name":"x","status":"pending"}</view>`
	md, records, _ := Extract(raw)
	require.Len(t, records, 1)
	require.Contains(t, md, "<viewport>stuff</viewport>")
	require.Contains(t, md, "<toolblock>0</toolblock>")
}

func TestExtractStripsWrapperMarkup(t *testing.T) {
	raw := `<view type="plugin"><pre>{"name":"Fetch","status":"running"}</pre></view>`
	_, records, _ := Extract(raw)
	require.Len(t, records, 1)
	require.Equal(t, "Fetch", records[0].Name)
	require.Equal(t, StatusRunning, records[0].Status)
}

func TestExtractNormalizesResult(t *testing.T) {
	raw := `<view>{"name":"x","status":"completed","result":"line1\\nline2"}</view>`
	_, records, _ := Extract(raw)
	require.Len(t, records, 1)
	require.Equal(t, "line1\nline2", records[0].Result)
}

func TestSegmentsRoundTrip(t *testing.T) {
	md := "intro <toolblock>0</toolblock> middle <toolblock>1</toolblock>"
	segs := Segments(md)
	require.Len(t, segs, 4)
	require.Equal(t, "intro ", segs[0].Text)
	require.True(t, segs[1].IsRef)
	require.Equal(t, 0, segs[1].Index)
	require.Equal(t, " middle ", segs[2].Text)
	require.True(t, segs[3].IsRef)
	require.Equal(t, 1, segs[3].Index)
}

func TestSegmentsNonNumericTokenStaysLiteral(t *testing.T) {
	md := "x <toolblock>abc</toolblock> y"
	segs := Segments(md)
	require.Len(t, segs, 3)
	require.False(t, segs[1].IsRef)
	require.Equal(t, "<toolblock>abc</toolblock>", segs[1].Text)
}

func TestDecodePayloadVariants(t *testing.T) {
	p := DecodePayload(`{"template_name":"daily","template_introduce":"Morning digest"}`)
	require.NotNil(t, p.Card)
	require.Equal(t, "daily", p.Card.Name)

	p = DecodePayload("plain text body")
	require.Nil(t, p.Card)
	require.Equal(t, "plain text body", p.Text)

	// JSON objects without a template name are still text payloads.
	p = DecodePayload(`{"name":"tool"}`)
	require.Nil(t, p.Card)
}
