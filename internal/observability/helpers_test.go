package observability

import (
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func testLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}
