package config

type WorkerKeyStruct struct {
	GenerateJobsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	GenerateJobsQueue: "generate_jobs_queue",
}
