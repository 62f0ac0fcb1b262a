package lsql

import (
	"os"

	ltest "github.com/avdrh/abtest/pkg/test"
)

// NewTestingConfig points at a fresh sqlite file that is removed when the test ends. Pool sizes match the
// SQL_DB_* defaults.
func NewTestingConfig(t ltest.T) (*Config, error) {
	file, err := os.CreateTemp("", "abtest-*.db")
	if err != nil {
		return nil, err
	}
	_ = file.Close()
	t.Cleanup(func() {
		_, err := os.Stat(file.Name())
		if !os.IsNotExist(err) {
			os.RemoveAll(file.Name())
		}
	})
	return &Config{
		Engine:         EngineSqlite,
		DatabaseName:   "test",
		Address:        file.Name(),
		Options:        "_pragma=synchronous(OFF)",
		MaxOpenConns:   20,
		MaxIdleConns:   5,
		ConnectRetries: 1,
	}, nil
}
