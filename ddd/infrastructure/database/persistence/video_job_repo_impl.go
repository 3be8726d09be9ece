package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/repo"
	"videogen-service/ddd/domain/vo"
	"videogen-service/ddd/infrastructure/database/convertor"
	"videogen-service/ddd/infrastructure/database/dao"
	"videogen-service/pkg/errno"
)

type videoJobRepositoryImpl struct {
	jobDao    *dao.VideoJobDAO
	convertor *convertor.VideoJobConvertor
}

// NewVideoJobRepository builds the gorm-backed job repository.
func NewVideoJobRepository() repo.VideoJobRepository {
	return &videoJobRepositoryImpl{
		jobDao:    dao.NewVideoJobDAO(),
		convertor: convertor.NewVideoJobConvertor(),
	}
}

// NewVideoJobRepositoryWithDAO wires an explicit DAO, used by tests.
func NewVideoJobRepositoryWithDAO(jobDao *dao.VideoJobDAO) repo.VideoJobRepository {
	return &videoJobRepositoryImpl{
		jobDao:    jobDao,
		convertor: convertor.NewVideoJobConvertor(),
	}
}

func (r *videoJobRepositoryImpl) Create(ctx context.Context, job *entity.VideoJob) error {
	p := r.convertor.ToPO(job)
	if err := r.jobDao.Create(ctx, p); err != nil {
		return err
	}
	job.ID = p.Id
	return nil
}

func (r *videoJobRepositoryImpl) Get(ctx context.Context, id uint64) (*entity.VideoJob, error) {
	p, err := r.jobDao.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.NewBizError(errno.ErrVideoJobNotFound, err)
		}
		return nil, err
	}
	return r.convertor.ToEntity(p), nil
}

func (r *videoJobRepositoryImpl) Update(ctx context.Context, job *entity.VideoJob) error {
	return r.jobDao.Update(ctx, r.convertor.ToPO(job))
}

func (r *videoJobRepositoryImpl) UpdateStatus(ctx context.Context, id uint64, status vo.JobStatus) error {
	return r.jobDao.UpdateStatus(ctx, id, status.String())
}

func (r *videoJobRepositoryImpl) UpdateProgress(ctx context.Context, id uint64, progress int, estimatedTimeLeft, jobTime int64) error {
	return r.jobDao.UpdateProgress(ctx, id, progress, estimatedTimeLeft, jobTime)
}

func (r *videoJobRepositoryImpl) CountByStatus(ctx context.Context, status vo.JobStatus) (int64, error) {
	return r.jobDao.CountByStatus(ctx, status.String())
}

func (r *videoJobRepositoryImpl) CountByStatusAndGenerator(ctx context.Context, status vo.JobStatus, generator vo.GeneratorKind) (int64, error) {
	return r.jobDao.CountByStatusAndGenerator(ctx, status.String(), generator.String())
}

func (r *videoJobRepositoryImpl) MarkStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.jobDao.MarkStaleProcessing(ctx, cutoff)
}
