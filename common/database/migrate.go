package database

import (
	"errors"
	"fmt"

	"healthpulse-engine/common/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations 执行 migrations 目录下的 SQL 迁移
// sourceDir 为迁移文件目录（如 "migrations"），已是最新版本时不返回错误
func RunMigrations(cfg *config.DatabaseConfig, sourceDir string) error {
	m, err := migrate.New("file://"+sourceDir, cfg.GetURL())
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
