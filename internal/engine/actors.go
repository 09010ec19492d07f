package engine

import (
	"github.com/abhinash-ops/Mind-canvus/internal/database"
	"github.com/abhinash-ops/Mind-canvus/internal/engine/actors"
	"github.com/abhinash-ops/Mind-canvus/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// Engine wires up the actor hierarchy and hands out the PIDs the HTTP
// layer and the scheduler talk to.
type Engine struct {
	postActor      *actor.PID
	commentActor   *actor.PID
	userSupervisor *actor.PID
}

// NewEngine spawns the actors. mongodb may be nil, in which case every
// actor runs purely in memory.
func NewEngine(system *actor.ActorSystem, metrics *utils.MetricsCollector, mongodb *database.MongoDB) *Engine {
	context := system.Root

	postProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewPostActor(metrics, mongodb)
	})
	postPID := context.Spawn(postProps)

	// The comment actor asks the post actor about post existence, so it
	// is spawned second with the PID in hand.
	commentProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewCommentActor(postPID, metrics, mongodb)
	})
	commentPID := context.Spawn(commentProps)

	userProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewUserSupervisor(mongodb)
	})
	userPID := context.Spawn(userProps)

	return &Engine{
		postActor:      postPID,
		commentActor:   commentPID,
		userSupervisor: userPID,
	}
}

// GetPostActor returns the PID of the post actor
func (e *Engine) GetPostActor() *actor.PID {
	return e.postActor
}

// GetCommentActor returns the PID of the comment actor
func (e *Engine) GetCommentActor() *actor.PID {
	return e.commentActor
}

// GetUserSupervisor returns the PID of the user supervisor
func (e *Engine) GetUserSupervisor() *actor.PID {
	return e.userSupervisor
}
