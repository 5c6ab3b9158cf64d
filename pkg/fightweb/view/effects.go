package view

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/recera/fightweb/pkg/fightweb/interaction"
)

var errNoFetcher = errors.New("no detail source configured")

// apply performs the side effects of a transition. Loop only.
func (c *Controller) apply(fx []interaction.Effect) {
	if len(fx) > 0 || c.machine.State() != c.snap.State {
		c.dirty = true
	}
	for _, e := range fx {
		switch e := e.(type) {
		case interaction.ScheduleClose:
			c.stopTimer()
			token := e.Token
			c.timer = c.clock.AfterFunc(e.Delay, func() {
				c.post(func() {
					c.apply(c.machine.CloseTimerFired(token))
				})
			})
		case interaction.CancelClose:
			c.stopTimer()
		case interaction.Fetch:
			c.focusOverlay = ""
			c.startFetch(e.ID, e.Seq)
		case interaction.FocusOverlay:
			c.focusOverlay = e.ID
		case interaction.OverlayClosed:
			c.abortFetch()
			c.focusOverlay = ""
			c.measured = nil
		}
	}
}

func (c *Controller) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) abortFetch() {
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
}

// startFetch supersedes any in-flight request. The result is posted back
// to the loop and dropped there unless id and seq are still current.
func (c *Controller) startFetch(id string, seq uint64) {
	c.abortFetch()
	if c.fetcher == nil {
		c.machine.ResolveFetch(id, seq, nil, errNoFetcher)
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.opts.FetchTimeout)
	c.cancelFetch = cancel
	fetcher := c.fetcher
	log := c.log
	go func() {
		defer cancel()
		d, err := fetcher.FetchDetail(ctx, id)
		c.post(func() {
			if !c.machine.ResolveFetch(id, seq, d, err) {
				log.Debug("stale detail dropped", zap.String("id", id), zap.Uint64("seq", seq))
				return
			}
			if err != nil {
				log.Warn("detail fetch failed", zap.String("id", id), zap.Error(err))
			}
			c.dirty = true
		})
	}()
}
