package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// TemplateWarmer loads stored templates into the cache.
type TemplateWarmer interface {
	Warmup(ctx context.Context) (int, error)
}

// TemplateWarmupTask refills the template cache on a schedule.
type TemplateWarmupTask struct {
	warmer   TemplateWarmer
	schedule string
	timeout  time.Duration
}

func NewTemplateWarmupTask(schedule string, warmer TemplateWarmer) *TemplateWarmupTask {
	return &TemplateWarmupTask{
		warmer:   warmer,
		schedule: schedule,
		timeout:  time.Minute,
	}
}

func (c *TemplateWarmupTask) ID() string {
	return "template_warmup"
}

func (c *TemplateWarmupTask) Schedule() string {
	return c.schedule
}

func (c *TemplateWarmupTask) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	n, err := c.warmer.Warmup(ctx)
	if err != nil {
		logrus.Errorf("template warmup failed after %d templates: %v", n, err)
		return
	}
	logrus.Debugf("template warmup loaded %d templates", n)
}
