package lifecycle

import (
	"fmt"

	"github.com/football-investment/practice-booking-system-sub013/models"
)

// TransitionContext carries the tournament facts guards need. Callers load
// everything up front; guards never do I/O.
type TransitionContext struct {
	Tournament         *models.Tournament
	SessionCount       int
	ConfirmedEnrollees int
	GroupStageComplete bool
}

// Guard is one precondition for entering a target status. It returns a
// human-readable reason on failure.
type Guard func(ctx TransitionContext) (ok bool, reason string)

// targetGuards are evaluated in declaration order for the requested status;
// the first failing guard's reason becomes the rejection message.
var targetGuards = map[models.TournamentStatus][]Guard{
	models.StatusSeekingInstructor: {
		requireSessions,
	},
	models.StatusInstructorConfirmed: {
		requireInstructor,
	},
	models.StatusEnrollmentOpen: {
		requireInstructor,
	},
	models.StatusInProgress: {
		requireMinEnrollees,
	},
	models.StatusCompleted: {
		requireGroupStageResolved,
	},
}

func requireSessions(ctx TransitionContext) (bool, string) {
	if ctx.SessionCount < 1 {
		return false, "No sessions defined"
	}
	return true, ""
}

func requireInstructor(ctx TransitionContext) (bool, string) {
	if ctx.Tournament.InstructorID == nil {
		return false, "No instructor assigned"
	}
	return true, ""
}

func requireMinEnrollees(ctx TransitionContext) (bool, string) {
	if ctx.ConfirmedEnrollees < 2 {
		return false, fmt.Sprintf("At least 2 confirmed enrollees required, have %d", ctx.ConfirmedEnrollees)
	}
	return true, ""
}

func requireGroupStageResolved(ctx TransitionContext) (bool, string) {
	if ctx.Tournament.Format == models.FormatGroupKnockout && !ctx.GroupStageComplete {
		return false, "Group stage not finalized"
	}
	return true, ""
}

// Validate checks a requested transition against the graph and the target
// status's guards. It rejects with "transition not allowed" when no edge
// exists, otherwise with the first failing guard's reason.
func Validate(current, requested models.TournamentStatus, ctx TransitionContext) (bool, string) {
	if !requested.Valid() {
		return false, fmt.Sprintf("unknown status %q", requested)
	}
	if !EdgeExists(current, requested) {
		return false, fmt.Sprintf("transition not allowed: %s -> %s", current, requested)
	}
	for _, guard := range targetGuards[requested] {
		if ok, reason := guard(ctx); !ok {
			return false, reason
		}
	}
	return true, ""
}
