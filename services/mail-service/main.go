package main

import "github.com/stoik/tempmail/services/mail-service/internal/app"

func main() {
	app.Execute()
}
