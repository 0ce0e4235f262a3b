// 包 migrate：导入管线所需的最小 Postgres 结构
package migrate

import (
	"database/sql"

	"github.com/copyleftdev/rasn/internal/logger"
)

// 背景：首次运行自动创建范围来源表与索引，保障导入与快照构建
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；仅创建最小必需结构
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _asn_ranges (
            start_int BIGINT NOT NULL,
            end_int BIGINT NOT NULL,
            asn BIGINT NOT NULL,
            country TEXT NOT NULL DEFAULT '',
            organization TEXT NOT NULL DEFAULT '',
            PRIMARY KEY (start_int)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_asn_ranges_asn ON _asn_ranges(asn)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_ok")
	return nil
}
