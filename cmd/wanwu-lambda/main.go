package main

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/raywall/wanwu/internal/handler"
	"github.com/raywall/wanwu/internal/logging"
)

func main() {
	log := logging.New(os.Stderr)
	if os.Getenv("WANWU_DEBUG") != "" {
		log.SetDebugLevel()
	}
	lambda.Start(handler.New(log).Handle)
}
