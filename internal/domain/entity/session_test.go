package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sampleResult() *DetectionResult {
	return &DetectionResult{
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Metrics:   Metrics{MAP: "78.5%", Precision: "85.2%", Recall: "82.1%", InferenceSpeed: "45ms"},
		Detections: []Detection{
			{ID: 1, Label: LabelToolbox, Confidence: "92%", Box: BoundingBox{X: "70%", Y: "10%", Width: "15%", Height: "30%"}},
		},
	}
}

func TestNewSession_DefaultState(t *testing.T) {
	s := NewSession(10)
	require.Equal(t, int64(10), s.ChatID)
	require.Equal(t, PageHome, s.Page)
	require.Equal(t, DefaultTeamName, s.TeamName)
	require.Equal(t, ZoomDefault, s.Zoom)
	require.True(t, s.ShowOverlays)
	require.Equal(t, StateIdle, s.Workflow())
}

func TestSession_Workflow(t *testing.T) {
	s := NewSession(1)
	s.SelectImage(ImageRef{FileID: "a"})
	require.Equal(t, StateImageSelected, s.Workflow())

	s.Detecting = true
	require.Equal(t, StateDetecting, s.Workflow())

	s.Detecting = false
	s.Record(sampleResult())
	require.Equal(t, StateResultReady, s.Workflow())

	s.Summarizing = true
	require.Equal(t, StateSummaryPending, s.Workflow())

	s.Summarizing = false
	s.Summary = "ok"
	require.Equal(t, StateSummaryReady, s.Workflow())

	s.Clear()
	require.Equal(t, StateIdle, s.Workflow())
}

func TestSession_ClearKeepsHistory(t *testing.T) {
	s := NewSession(1)
	s.SelectImage(ImageRef{FileID: "a"})
	s.Record(sampleResult())
	s.Summary = "text"
	s.ZoomIn()
	s.OpenObjectInfo(LabelToolbox)
	gen := s.Generation

	s.Clear()

	require.Nil(t, s.Image)
	require.Empty(t, s.Preview)
	require.Empty(t, s.PreviewKind)
	require.Nil(t, s.Result)
	require.Empty(t, s.Summary)
	require.Equal(t, ZoomDefault, s.Zoom)
	require.Nil(t, s.ObjectInfo)
	require.Len(t, s.History, 1)
	require.Greater(t, s.Generation, gen)
}

func TestSession_SelectImageResetsResult(t *testing.T) {
	s := NewSession(1)
	s.SelectImage(ImageRef{FileID: "a"})
	s.Record(sampleResult())
	s.Summary = "text"
	s.ZoomOut()
	s.OpenObjectInfo(LabelToolbox)

	s.SelectImage(ImageRef{FileID: "b"})

	require.Equal(t, "b", s.Preview)
	require.Nil(t, s.Result)
	require.Empty(t, s.Summary)
	require.Equal(t, ZoomDefault, s.Zoom)
	require.NotNil(t, s.ObjectInfo)
}

func TestSession_RecordPrependsHistory(t *testing.T) {
	s := NewSession(1)
	s.SelectImage(ImageRef{FileID: "a", Kind: PreviewPhoto})
	s.Record(sampleResult())

	s.SelectImage(ImageRef{FileID: "b", Kind: PreviewDocument})
	s.Record(sampleResult())

	require.Len(t, s.History, 2)
	require.Equal(t, "b", s.History[0].Preview)
	require.Equal(t, PreviewDocument, s.History[0].PreviewKind)
	require.Equal(t, "a", s.History[1].Preview)
	require.Equal(t, PreviewPhoto, s.History[1].PreviewKind)
}

func TestSession_ToggleOverlaysTwice(t *testing.T) {
	s := NewSession(1)
	s.SelectImage(ImageRef{FileID: "a"})
	s.Record(sampleResult())
	before := s.Result.Clone()

	s.ToggleOverlays()
	require.False(t, s.ShowOverlays)
	s.ToggleOverlays()
	require.True(t, s.ShowOverlays)
	require.Equal(t, before, s.Result)
}

func TestSession_OpenObjectInfoReplaces(t *testing.T) {
	s := NewSession(1)
	s.OpenObjectInfo(LabelToolbox)
	info := s.OpenObjectInfo(LabelOxygenTank)

	require.Equal(t, LabelOxygenTank, s.ObjectInfo.Label)
	require.Equal(t, info, *s.ObjectInfo)

	s.CloseObjectInfo()
	require.Nil(t, s.ObjectInfo)
}

func TestSession_CloneIsIndependent(t *testing.T) {
	s := NewSession(1)
	s.SelectImage(ImageRef{FileID: "a"})
	s.Record(sampleResult())

	c := s.Clone()
	s.Record(sampleResult())
	s.Image.Name = "changed"

	require.Len(t, c.History, 1)
	require.Empty(t, c.Image.Name)
}

func TestParsePage(t *testing.T) {
	p, ok := ParsePage(" History ")
	require.True(t, ok)
	require.Equal(t, PageHistory, p)

	_, ok = ParsePage("settings")
	require.False(t, ok)
}
