package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/helptree/internal/cli"
	"github.com/temirov/helptree/internal/utils"
)

// main is the entry point for the helptree command.
func main() {
	loggerInstance, closeLogger, loggerInitializationError := utils.NewApplicationLogger(utils.LoggerOptions{})
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer func() { _ = closeLogger() }()
	if applicationExecutionError := cli.Execute(); applicationExecutionError != nil {
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage, zap.Error(applicationExecutionError))
	}
}
