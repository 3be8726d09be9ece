package component

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	appsvc "videogen-service/ddd/application/app"
	"videogen-service/ddd/application/cqe"
	"videogen-service/pkg/config"
	"videogen-service/pkg/errno"
	pkgkafka "videogen-service/pkg/kafka"
	"videogen-service/pkg/logger"
	"videogen-service/pkg/manager"
)

// VideoJobSubmissionConsumerPlugin starts the kafka intake for submissions
// produced by the upstream web tier.
type VideoJobSubmissionConsumerPlugin struct{}

func (p *VideoJobSubmissionConsumerPlugin) Name() string { return "videoJobSubmissionConsumer" }

func (p *VideoJobSubmissionConsumerPlugin) MustCreateComponent(deps *manager.Dependencies) manager.Component {
	var app appsvc.VideoJobApp
	if deps != nil {
		if v, ok := deps.VideoJobService.(appsvc.VideoJobApp); ok {
			app = v
		}
	}
	if app == nil {
		app = appsvc.DefaultVideoJobApp()
	}
	cfg := deps.Config
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	return &videoJobSubmissionConsumer{app: app, cfg: cfg}
}

type submissionMessage struct {
	Generator      string  `json:"generator"`
	VideoID        uint64  `json:"video_id"`
	ModelID        uint64  `json:"model_id"`
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt"`
	CfgScale       float64 `json:"cfg_scale"`
	Denoising      float64 `json:"denoising"`
	FrameCount     int     `json:"frame_count"`
	Length         float64 `json:"length"`
	Seed           int64   `json:"seed"`
	Preset         string  `json:"preset"`
}

type videoJobSubmissionConsumer struct {
	app    appsvc.VideoJobApp
	cfg    *config.Config
	ctx    context.Context
	cancel context.CancelFunc
}

func (c *videoJobSubmissionConsumer) Start() error {
	if !c.cfg.Kafka.Enabled {
		logger.Infof("kafka submission intake disabled")
		return nil
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())
	topic := c.cfg.Kafka.Topics.VideoJobSubmissions
	group := c.cfg.Kafka.GroupID
	reader := pkgkafka.DefaultClient().Reader(topic, group)

	go func() {
		defer reader.Close()
		logger.Infof("kafka consumer started topic=%s group=%s", topic, group)
		for {
			msg, err := reader.ReadMessage(c.ctx)
			if err != nil {
				if c.ctx.Err() != nil {
					return
				}
				if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "EOF") {
					logger.Debug("kafka reader EOF", nil)
				} else {
					logger.Warnf("kafka read error error=%s", err.Error())
				}
				continue
			}

			var m submissionMessage
			if err := json.Unmarshal(msg.Value, &m); err != nil {
				logger.Warnf("kafka message unmarshal error error=%s", err.Error())
				continue
			}
			logger.Infof("kafka submission received video_id=%d generator=%s", m.VideoID, m.Generator)
			if err := c.handle(&m); err != nil {
				logger.Warnf("submission from kafka failed video_id=%d error=%s", m.VideoID, err.Error())
			}
		}
	}()
	return nil
}

func (c *videoJobSubmissionConsumer) handle(m *submissionMessage) error {
	ctx := context.Background()
	var err error
	switch m.Generator {
	case "deforum":
		_, err = c.app.SubmitDeforum(ctx, &cqe.SubmitDeforumReq{
			VideoID:        m.VideoID,
			ModelID:        m.ModelID,
			Prompt:         m.Prompt,
			NegativePrompt: m.NegativePrompt,
			Preset:         m.Preset,
			Length:         m.Length,
			FrameCount:     m.FrameCount,
			Seed:           m.Seed,
			Denoising:      m.Denoising,
		})
	case "", "vid2vid":
		_, err = c.app.SubmitVid2Vid(ctx, &cqe.SubmitVid2VidReq{
			VideoID:        m.VideoID,
			ModelID:        m.ModelID,
			Prompt:         m.Prompt,
			NegativePrompt: m.NegativePrompt,
			CfgScale:       m.CfgScale,
			Denoising:      m.Denoising,
			FrameCount:     m.FrameCount,
			Seed:           m.Seed,
		})
	default:
		err = errno.NewBizError(errno.ErrGeneratorUnknown, fmt.Errorf("generator %q", m.Generator))
	}
	return err
}

func (c *videoJobSubmissionConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	return nil
}

func (c *videoJobSubmissionConsumer) GetName() string { return "videoJobSubmissionConsumer" }
