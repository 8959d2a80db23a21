package pluginhost

import (
	"github.com/nymea/nymea-sub004/internal/model"
)

// scheduleAutoMonitoring registers a cron job that calls StartMonitoringAuto
// on p on the h.autoMonitoringCron schedule. loadOne calls it for every
// loaded plugin, whatever create methods its thing classes declare. One
// shared cron.Cron backs every plugin's job, matching the "single background
// goroutine for all plugins" design; cronJobs lets a reload replace a
// plugin's job instead of leaking a second one.
func (h *Host) scheduleAutoMonitoring(pluginID model.ID, p ThingPlugin) {
	h.unscheduleAutoMonitoring(pluginID)

	wrapped := func() {
		defer func() {
			if r := recover(); r != nil {
				h.log.Error().Interface("panic", r).Str("plugin", pluginID.String()).Msg("startMonitoringAuto panicked")
			}
		}()
		p.StartMonitoringAuto()
	}

	entryID, err := h.cron.AddFunc(h.autoMonitoringCron, wrapped)
	if err != nil {
		h.log.Error().Err(err).Str("plugin", pluginID.String()).Msg("scheduling auto-monitoring failed")
		return
	}
	h.cronJobs[pluginID] = entryID
}

func (h *Host) unscheduleAutoMonitoring(pluginID model.ID) {
	if entryID, ok := h.cronJobs[pluginID]; ok {
		h.cron.Remove(entryID)
		delete(h.cronJobs, pluginID)
	}
}
