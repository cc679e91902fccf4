package main

import (
	"os"

	"bankscap/internal/app"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := app.Run(); err != nil {
		logrus.WithError(err).Error("bankscap failed")
		os.Exit(1)
	}
}
