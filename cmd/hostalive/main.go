package main

import (
	"github.com/sirupsen/logrus"

	"github.com/kylerisse/hostalive/pkg/cli"
)

func main() {
	if err := cli.SetupRootCommand().Execute(); err != nil {
		// Fatal exits with status 1
		logrus.WithError(err).Fatal("hostalive stopped")
	}
}
