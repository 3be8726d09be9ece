package convertor

import (
	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/vo"
	"videogen-service/ddd/infrastructure/database/po"
)

// VideoJobConvertor maps video job rows to entities and back.
type VideoJobConvertor struct{}

func NewVideoJobConvertor() *VideoJobConvertor {
	return &VideoJobConvertor{}
}

// ToEntity converts a PO into a domain entity.
func (c *VideoJobConvertor) ToEntity(p *po.VideoJob) *entity.VideoJob {
	status, ok := vo.NewJobStatusFromString(p.Status)
	if !ok {
		status = vo.JobStatusPending
	}

	controlnet := ""
	if p.Controlnet != nil {
		controlnet = *p.Controlnet
	}
	generationParameters := ""
	if p.GenerationParameters != nil {
		generationParameters = *p.GenerationParameters
	}

	return &entity.VideoJob{
		ID:     p.Id,
		UserID: p.UserID,

		Generator: vo.GeneratorKind(p.Generator),
		Status:    status,

		Prompt:               p.Prompt,
		NegativePrompt:       p.NegativePrompt,
		Seed:                 p.Seed,
		ModelID:              p.ModelID,
		FrameCount:           p.FrameCount,
		Length:               p.Length,
		FPS:                  p.FPS,
		Width:                p.Width,
		Height:               p.Height,
		CfgScale:             p.CfgScale,
		Denoising:            p.Denoising,
		Controlnet:           controlnet,
		GenerationParameters: generationParameters,
		Revision:             p.Revision,

		Filename:         p.Filename,
		OriginalFilename: p.OriginalFilename,
		Mimetype:         p.Mimetype,
		Size:             p.Size,
		OriginalPath:     p.OriginalPath,
		OriginalURL:      p.OriginalURL,
		Outfile:          p.Outfile,
		URL:              p.URL,
		PreviewImage:     p.PreviewImage,
		PreviewAnimation: p.PreviewAnimation,

		Progress:          p.Progress,
		JobTime:           p.JobTime,
		EstimatedTimeLeft: p.EstimatedTimeLeft,
		Retries:           p.Retries,
		QueuedAt:          p.QueuedAt,

		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ToPO converts a domain entity into a PO.
func (c *VideoJobConvertor) ToPO(e *entity.VideoJob) *po.VideoJob {
	var controlnet *string
	if e.Controlnet != "" {
		v := e.Controlnet
		controlnet = &v
	}
	var generationParameters *string
	if e.GenerationParameters != "" {
		v := e.GenerationParameters
		generationParameters = &v
	}

	return &po.VideoJob{
		BaseModel: po.BaseModel{
			Id:        e.ID,
			CreatedAt: e.CreatedAt,
			UpdatedAt: e.UpdatedAt,
		},
		UserID:    e.UserID,
		Generator: e.Generator.String(),
		Status:    e.Status.String(),

		Prompt:               e.Prompt,
		NegativePrompt:       e.NegativePrompt,
		Seed:                 e.Seed,
		ModelID:              e.ModelID,
		FrameCount:           e.FrameCount,
		Length:               e.Length,
		FPS:                  e.FPS,
		Width:                e.Width,
		Height:               e.Height,
		CfgScale:             e.CfgScale,
		Denoising:            e.Denoising,
		Controlnet:           controlnet,
		GenerationParameters: generationParameters,
		Revision:             e.Revision,

		Filename:         e.Filename,
		OriginalFilename: e.OriginalFilename,
		Mimetype:         e.Mimetype,
		Size:             e.Size,
		OriginalPath:     e.OriginalPath,
		OriginalURL:      e.OriginalURL,
		Outfile:          e.Outfile,
		URL:              e.URL,
		PreviewImage:     e.PreviewImage,
		PreviewAnimation: e.PreviewAnimation,

		Progress:          e.Progress,
		JobTime:           e.JobTime,
		EstimatedTimeLeft: e.EstimatedTimeLeft,
		Retries:           e.Retries,
		QueuedAt:          e.QueuedAt,
	}
}

// ToEntities converts a batch of POs.
func (c *VideoJobConvertor) ToEntities(pos []*po.VideoJob) []*entity.VideoJob {
	if pos == nil {
		return nil
	}
	entities := make([]*entity.VideoJob, 0, len(pos))
	for _, p := range pos {
		if p != nil {
			entities = append(entities, c.ToEntity(p))
		}
	}
	return entities
}
