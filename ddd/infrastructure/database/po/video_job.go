package po

import "time"

// VideoJob persistent object for one generation request.
type VideoJob struct {
	BaseModel
	UserID    uint64 `gorm:"column:user_id;index" json:"user_id"`
	Generator string `gorm:"column:generator;type:varchar(20);index;default:vid2vid" json:"generator"`
	Status    string `gorm:"column:status;type:varchar(20);index" json:"status"`

	Prompt               string  `gorm:"column:prompt;type:text" json:"prompt"`
	NegativePrompt       string  `gorm:"column:negative_prompt;type:text" json:"negative_prompt"`
	Seed                 int64   `gorm:"column:seed;type:bigint" json:"seed"`
	ModelID              uint64  `gorm:"column:model_id" json:"model_id"`
	FrameCount           int     `gorm:"column:frame_count;type:int;default:0" json:"frame_count"`
	Length               float64 `gorm:"column:length" json:"length"`
	FPS                  int     `gorm:"column:fps;type:int" json:"fps"`
	Width                int     `gorm:"column:width;type:int" json:"width"`
	Height               int     `gorm:"column:height;type:int" json:"height"`
	CfgScale             float64 `gorm:"column:cfg_scale" json:"cfg_scale"`
	Denoising            float64 `gorm:"column:denoising" json:"denoising"`
	Controlnet           *string `gorm:"column:controlnet;type:json" json:"controlnet,omitempty"`
	GenerationParameters *string `gorm:"column:generation_parameters;type:json" json:"generation_parameters,omitempty"`
	Revision             string  `gorm:"column:revision;type:varchar(32)" json:"revision"`

	Filename         string `gorm:"column:filename;type:varchar(255)" json:"filename"`
	OriginalFilename string `gorm:"column:original_filename;type:varchar(255)" json:"original_filename"`
	Mimetype         string `gorm:"column:mimetype;type:varchar(100)" json:"mimetype"`
	Size             int64  `gorm:"column:size;type:bigint" json:"size"`
	OriginalPath     string `gorm:"column:original_path;type:varchar(512)" json:"original_path"`
	OriginalURL      string `gorm:"column:original_url;type:varchar(512)" json:"original_url"`
	Outfile          string `gorm:"column:outfile;type:varchar(255)" json:"outfile"`
	URL              string `gorm:"column:url;type:varchar(512)" json:"url"`
	PreviewImage     string `gorm:"column:preview_img;type:varchar(512)" json:"preview_img"`
	PreviewAnimation string `gorm:"column:preview_animation;type:varchar(512)" json:"preview_animation"`

	Progress          int        `gorm:"column:progress;type:int;default:0" json:"progress"`
	JobTime           int64      `gorm:"column:job_time;type:bigint;default:0" json:"job_time"`
	EstimatedTimeLeft int64      `gorm:"column:estimated_time_left;type:bigint;default:0" json:"estimated_time_left"`
	Retries           int        `gorm:"column:retries;type:int;default:0" json:"retries"`
	QueuedAt          *time.Time `gorm:"column:queued_at;type:timestamp" json:"queued_at,omitempty"`
}

// TableName maps the PO onto its table.
func (VideoJob) TableName() string {
	return "video_jobs"
}
