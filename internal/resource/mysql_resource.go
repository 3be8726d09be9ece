package resource

import (
	"sync"

	"gorm.io/gorm"

	"videogen-service/pkg/assert"
	"videogen-service/pkg/config"
	"videogen-service/pkg/manager"
	"videogen-service/pkg/repository"
)

var (
	mysqlResourceOnce sync.Once
	mysqlSingleton    *MySqlResource
)

// MySqlResource manages the lifecycle of the shared MySQL connection pool.
type MySqlResource struct {
	db *repository.Database
}

// DefaultMysqlResource returns the global MySQL resource instance.
func DefaultMysqlResource() *MySqlResource {
	assert.NotCircular()
	mysqlResourceOnce.Do(func() {
		mysqlSingleton = &MySqlResource{}
	})
	assert.NotNil(mysqlSingleton)
	return mysqlSingleton
}

// MustOpen establishes the database connection using global configuration.
func (r *MySqlResource) MustOpen() {
	if r.db != nil {
		return
	}

	cfg := config.GetGlobalConfig()
	if cfg == nil {
		panic("global config not initialized before MySqlResource")
	}

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		panic("failed to connect database: " + err.Error())
	}
	r.db = db
}

// Close releases the connection pool.
func (r *MySqlResource) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// MainDB exposes the gorm handle.
func (r *MySqlResource) MainDB() *gorm.DB {
	if r.db == nil {
		return nil
	}
	return r.db.Self
}

// MySqlResourcePlugin wires the resource into the manager.
type MySqlResourcePlugin struct{}

func (p *MySqlResourcePlugin) Name() string {
	return "mysql"
}

func (p *MySqlResourcePlugin) MustCreateResource() manager.Resource {
	return DefaultMysqlResource()
}
