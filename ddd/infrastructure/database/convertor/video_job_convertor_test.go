package convertor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/vo"
	"videogen-service/ddd/infrastructure/database/po"
)

func TestToEntityUnknownStatusFallsBackToPending(t *testing.T) {
	c := NewVideoJobConvertor()
	e := c.ToEntity(&po.VideoJob{Status: "garbled"})
	assert.Equal(t, vo.JobStatusPending, e.Status)
}

func TestToEntityNilJSONColumns(t *testing.T) {
	c := NewVideoJobConvertor()
	e := c.ToEntity(&po.VideoJob{Status: "processing"})

	assert.Equal(t, "", e.Controlnet)
	assert.Equal(t, "", e.GenerationParameters)
}

func TestToPOEmptyJSONBecomesNull(t *testing.T) {
	c := NewVideoJobConvertor()
	p := c.ToPO(&entity.VideoJob{Status: vo.JobStatusProcessing})

	assert.Nil(t, p.Controlnet)
	assert.Nil(t, p.GenerationParameters)

	p = c.ToPO(&entity.VideoJob{Status: vo.JobStatusProcessing, Controlnet: `{"module":"canny"}`})
	require.NotNil(t, p.Controlnet)
	assert.Equal(t, `{"module":"canny"}`, *p.Controlnet)
}

func TestConvertorRoundTrip(t *testing.T) {
	c := NewVideoJobConvertor()
	original := &entity.VideoJob{
		ID:         7,
		UserID:     100,
		Generator:  vo.GeneratorDeforum,
		Status:     vo.JobStatusPreview,
		Prompt:     "a whale",
		Seed:       42,
		FrameCount: 96,
		Length:     4,
		FPS:        24,
		Controlnet: `{"module":"canny"}`,
		Outfile:    "20260901120000.mp4",
		Progress:   100,
		Retries:    2,
	}

	got := c.ToEntity(c.ToPO(original))
	assert.Equal(t, original, got)
}

func TestToEntities(t *testing.T) {
	c := NewVideoJobConvertor()

	assert.Nil(t, c.ToEntities(nil))

	entities := c.ToEntities([]*po.VideoJob{
		{Status: "processing"},
		nil,
		{Status: "finished"},
	})
	require.Len(t, entities, 2)
	assert.Equal(t, vo.JobStatusProcessing, entities[0].Status)
	assert.Equal(t, vo.JobStatusFinished, entities[1].Status)
}
