package daemon

import (
	"time"

	"git.home.luguber.info/inful/storewatch/internal/events"
	"git.home.luguber.info/inful/storewatch/internal/store"
)

func pollEvent(repository string, result store.PollResult) events.PollEvent {
	return events.PollEvent{
		Repository: repository,
		Decision:   string(result.Decision),
		Timestamp:  time.Now().UTC(),
	}
}

func buildEvent(buildID string, number int64, repository, outcome string) events.BuildEvent {
	return events.BuildEvent{
		BuildID:     buildID,
		BuildNumber: number,
		Repository:  repository,
		Outcome:     outcome,
		Timestamp:   time.Now().UTC(),
	}
}
