package mailer

import "fmt"

// renderBody wraps a greeting and message in the shared email layout.
func renderBody(userName, message string) string {
	if userName == "" {
		userName = "there"
	}
	return fmt.Sprintf("<div><h1>Hi, %s</h1><p>%s</p></div>", userName, message)
}

// TrainingSucceeded builds the notification sent when a model finishes
// training successfully.
func TrainingSucceeded(to, userName, modelName string) Message {
	return Message{
		To:      to,
		Subject: "Your model training is completed!",
		HTML: renderBody(userName,
			fmt.Sprintf("Your model %q has been trained successfully and is ready to generate images.", modelName)),
	}
}

// TrainingStatusChanged builds the notification sent when a job reports any
// non-success status. The literal provider status is interpolated into the
// subject and body.
func TrainingStatusChanged(to, userName, modelName, status string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Your model training has been %s", status),
		HTML: renderBody(userName,
			fmt.Sprintf("Training for your model %q has been %s.", modelName, status)),
	}
}
