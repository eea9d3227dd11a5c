package mysql

import (
	"errors"
	"fmt"
	"time"

	"repair-service/src/pkg/log"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"
)

type DBInterface interface {
	GetDB() (*sqlx.DB, error)
	Close() error
}

type database struct {
	db *sqlx.DB
}

func InitConnection(v *viper.Viper, logger log.Log) (DBInterface, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=UTC",
		v.GetString("mysql.user"),
		v.GetString("mysql.password"),
		v.GetString("mysql.host"),
		v.GetInt("mysql.port"),
		v.GetString("mysql.database"),
	)

	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		logger.Error("mysql", fmt.Sprintf("failed to connect: %v", err), "InitConnection", "")
		return nil, err
	}

	maxOpen := v.GetInt("mysql.max_open_conns")
	if maxOpen == 0 {
		maxOpen = 25
	}
	maxIdle := v.GetInt("mysql.max_idle_conns")
	if maxIdle == 0 {
		maxIdle = 5
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &database{db: db}, nil
}

func (d *database) GetDB() (*sqlx.DB, error) {
	if d.db == nil {
		return nil, errors.New("mysql connection is not initialized")
	}
	return d.db, nil
}

func (d *database) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}
