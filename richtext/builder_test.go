package richtext

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func baseOpts() Options {
	return Options{
		BaseFontSize: 16,
		FontFamily:   "System",
	}
}

func TestBuildAttributed_FontScalingAndHeading(t *testing.T) {
	segs := []segment{
		{text: "Title", fontScale: 2.0, isBold: true},
	}
	fragments, links, _ := BuildAttributed(segs, baseOpts())
	require.Len(t, fragments, 1)
	require.Len(t, links, 1)
	require.Equal(t, float32(32), fragments[0].FontSize)
	require.Equal(t, FontWeightBold, fragments[0].FontWeight)
}

func TestBuildAttributed_AccessibilityFontScalingCap(t *testing.T) {
	segs := []segment{{text: "hi", fontScale: 1}}
	opts := baseOpts()
	opts.AllowFontScaling = true
	opts.FontSizeMultiplier = 3.0
	opts.MaxFontSizeMultiplier = 1.5

	fragments, _, _ := BuildAttributed(segs, opts)
	require.Len(t, fragments, 1)
	require.Equal(t, float32(24), fragments[0].FontSize) // 16 * 1 * 1.5
}

func TestBuildAttributed_TagStyleOverridesBaseFont(t *testing.T) {
	segs := []segment{{text: "code", parentTag: "code", fontScale: 1}}
	opts := baseOpts()
	opts.TagStyles = `{"code": {"fontSize": 14, "color": "#333333"}}`

	fragments, _, _ := BuildAttributed(segs, opts)
	require.Len(t, fragments, 1)
	require.Equal(t, float32(14), fragments[0].FontSize)
	require.Equal(t, uint32(0xFF333333), fragments[0].ForegroundColor)
}

func TestBuildAttributed_LinkGetsDefaultColorUnlessOverridden(t *testing.T) {
	segs := []segment{{text: "click", isLink: true, linkURL: "https://example.com", fontScale: 1, parentTag: "a"}}
	fragments, links, _ := BuildAttributed(segs, baseOpts())
	require.Len(t, fragments, 1)
	require.Equal(t, DefaultLinkColor, fragments[0].ForegroundColor)
	require.Equal(t, []string{"https://example.com"}, links)
}

func TestBuildAttributed_TagStyleColorBeatsLinkDefault(t *testing.T) {
	segs := []segment{{text: "click", isLink: true, linkURL: "https://example.com", fontScale: 1, parentTag: "a"}}
	opts := baseOpts()
	opts.TagStyles = `{"a": {"color": "#00FF00"}}`
	fragments, _, _ := BuildAttributed(segs, opts)
	require.Equal(t, uint32(0xFF00FF00), fragments[0].ForegroundColor)
}

func TestBuildAttributed_CallerColorUsedWhenNoLinkOrTagStyle(t *testing.T) {
	segs := []segment{{text: "plain", fontScale: 1}}
	opts := baseOpts()
	opts.Color = 0xFF123456
	fragments, _, _ := BuildAttributed(segs, opts)
	require.Equal(t, uint32(0xFF123456), fragments[0].ForegroundColor)
}

func TestBuildAttributed_DecorationResolution(t *testing.T) {
	cases := []struct {
		name      string
		seg       segment
		tagStyles string
		wantDecor TextDecorationLine
	}{
		{"underline from segment", segment{text: "a", fontScale: 1, isUnderline: true}, "", TextDecorationUnderline},
		{"strikethrough from segment", segment{text: "a", fontScale: 1, isStrikethrough: true}, "", TextDecorationStrikethrough},
		{"both", segment{text: "a", fontScale: 1, isUnderline: true, isStrikethrough: true}, "", TextDecorationUnderlineStrikethrough},
		{"none", segment{text: "a", fontScale: 1}, "", TextDecorationNone},
		{
			"tagStyle override forces underline", segment{text: "a", fontScale: 1, parentTag: "span"},
			`{"span": {"textDecorationLine": "underline"}}`, TextDecorationUnderline,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := baseOpts()
			opts.TagStyles = tc.tagStyles
			fragments, _, _ := BuildAttributed([]segment{tc.seg}, opts)
			require.Len(t, fragments, 1)
			require.Equal(t, tc.wantDecor, fragments[0].TextDecorationLineType)
		})
	}
}

func TestBuildAttributed_TrimsTrailingParagraphBreaks(t *testing.T) {
	segs := []segment{
		{text: "hello", fontScale: 1},
		{text: "\n", fontScale: 1},
		{text: "\n", fontScale: 1},
	}
	fragments, _, _ := BuildAttributed(segs, baseOpts())
	require.Len(t, fragments, 1)
	require.Equal(t, "hello", fragments[0].Text)
}

func TestBuildAttributed_EmptyAfterTrimReturnsNil(t *testing.T) {
	segs := []segment{{text: "\n", fontScale: 1}}
	fragments, links, label := BuildAttributed(segs, baseOpts())
	require.Nil(t, fragments)
	require.Nil(t, links)
	require.Equal(t, "", label)
}

func TestBuildAccessibilityLabel_PunctuatesListItems(t *testing.T) {
	label := buildAccessibilityLabel("1. first\n2. second")
	require.Equal(t, "1. first.\n2. second", label)
}

func TestBuildAccessibilityLabel_SkipsWhenAlreadyTerminated(t *testing.T) {
	label := buildAccessibilityLabel("first.\n2. second")
	require.Equal(t, "first.\n2. second", label)
}

func TestBuildAccessibilityLabel_BulletMarker(t *testing.T) {
	label := buildAccessibilityLabel("first\n• second")
	require.Equal(t, "first.\n• second", label)
}

func TestBuildAttributed_FragmentShape(t *testing.T) {
	segs := []segment{{text: "hi", fontScale: 1, isBold: true, isItalic: true}}
	opts := baseOpts()
	opts.LetterSpacing = 0.5

	fragments, _, _ := BuildAttributed(segs, opts)
	want := Fragment{
		Text:                   "hi",
		FontSize:               16,
		LineHeight:             20,
		FontWeight:             FontWeightBold,
		FontFamily:             "System",
		FontStyle:              FontStyleItalic,
		LetterSpacing:          0.5,
		TextDecorationLineType: TextDecorationNone,
		ForegroundColor:        0,
		AllowFontScaling:       false,
	}
	if diff := cmp.Diff(want, fragments[0]); diff != "" {
		t.Errorf("fragment mismatch (-want +got):\n%s", diff)
	}
}

func TestLinkURLsOf(t *testing.T) {
	segs := []segment{{linkURL: "a"}, {linkURL: ""}, {linkURL: "b"}}
	require.Equal(t, []string{"a", "", "b"}, linkURLsOf(segs))
}
