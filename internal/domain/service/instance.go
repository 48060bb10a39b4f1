package service

type Instance struct {
	Pipeline  *pipeline
	Scheduler *scheduler
	Trigger   *trigger
}

func NewInstance(opts Options) *Instance {
	pipelineService := newPipeline(PipelineOptions{
		Fetcher:    opts.Fetcher,
		Sink:       opts.Sink,
		Heartbeat:  opts.Heartbeat,
		StagingDir: opts.StagingDir,
		Format:     opts.Format,
		Logger:     opts.Logger,
	})

	return &Instance{
		Pipeline: pipelineService,
		Scheduler: newScheduler(SchedulerOptions{
			Schedule:  opts.Schedule,
			ChannelID: opts.ChannelID,
			Caption:   opts.Caption,
			Pipeline:  pipelineService,
			Conn:      opts.Conn,
			Logger:    opts.Logger,
			Clock:     opts.Clock,
			Sleeper:   opts.Sleeper,
			NewID:     opts.NewID,
		}),
		Trigger: newTrigger(TriggerOptions{
			Pipeline: pipelineService,
			Sink:     opts.Sink,
			Caption:  opts.TestCaption,
			Logger:   opts.Logger,
			NewID:    opts.NewID,
		}),
	}
}
