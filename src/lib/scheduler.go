package lib

import (
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

var scheduler gocron.Scheduler

func NewScheduler(s gocron.Scheduler) {
	scheduler = s
}

func GetScheduler() (gocron.Scheduler, error) {
	if scheduler != nil {
		return scheduler, nil
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		zap.S().Errorf("Error initializing Scheduler: %s", err.Error())
		return nil, err
	}
	scheduler = sched
	return sched, nil
}
