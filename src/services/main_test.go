package services

import (
	"os"
	"testing"

	"github.com/username/tradelens/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}
