package config

type WorkerKeyStruct struct {
	MailQueue     string
	MailDeadQueue string
}

var WorkerKey = &WorkerKeyStruct{
	MailQueue:     "mail_queue",
	MailDeadQueue: "mail_dead_queue",
}
