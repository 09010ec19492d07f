package actors

import (
	"log"
	"regexp"
	"sync"
	"time"

	stdctx "context"

	"github.com/abhinash-ops/Mind-canvus/internal/database"
	"github.com/abhinash-ops/Mind-canvus/internal/models"
	"github.com/abhinash-ops/Mind-canvus/internal/types"
	"github.com/abhinash-ops/Mind-canvus/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Message types for User operations
type (
	RegisterUserMsg struct {
		Username  string
		Email     string
		Password  string
		FirstName string
		LastName  string
	}

	LoginMsg struct {
		Email    string
		Password string
	}

	GetUserProfileMsg struct {
		UserID uuid.UUID
	}

	UpdateProfileMsg struct {
		UserID       uuid.UUID
		NewUsername  string
		NewFirstName string
		NewLastName  string
		NewAvatar    string
	}

	SendFriendRequestMsg struct {
		FromID uuid.UUID
		ToID   uuid.UUID
	}

	AcceptFriendRequestMsg struct {
		UserID      uuid.UUID
		RequesterID uuid.UUID
	}

	RejectFriendRequestMsg struct {
		UserID      uuid.UUID
		RequesterID uuid.UUID
	}

	RemoveFriendMsg struct {
		UserID   uuid.UUID
		FriendID uuid.UUID
	}

	GetFriendsMsg struct {
		UserID uuid.UUID
	}

	GetPendingRequestsMsg struct {
		UserID uuid.UUID
	}

	ConnectUserMsg struct {
		UserID uuid.UUID
	}

	DisconnectUserMsg struct {
		UserID uuid.UUID
	}
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserSupervisor owns the account registry and every operation that spans
// more than one user (friend requests touch both sides). Presence tracking
// is delegated to one UserActor per user.
type UserSupervisor struct {
	users     map[uuid.UUID]*models.User
	emailToID map[string]uuid.UUID
	presence  map[uuid.UUID]*actor.PID
	mu        sync.RWMutex
	mongodb   *database.MongoDB
}

func NewUserSupervisor(mongodb *database.MongoDB) actor.Actor {
	return &UserSupervisor{
		users:     make(map[uuid.UUID]*models.User),
		emailToID: make(map[string]uuid.UUID),
		presence:  make(map[uuid.UUID]*actor.PID),
		mongodb:   mongodb,
	}
}

func (s *UserSupervisor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("UserSupervisor started")
	case *RegisterUserMsg:
		s.handleRegister(context, msg)
	case *LoginMsg:
		s.handleLogin(context, msg)
	case *GetUserProfileMsg:
		s.handleGetProfile(context, msg)
	case *UpdateProfileMsg:
		s.handleUpdateProfile(context, msg)
	case *SendFriendRequestMsg:
		s.handleSendFriendRequest(context, msg)
	case *AcceptFriendRequestMsg:
		s.handleAcceptFriendRequest(context, msg)
	case *RejectFriendRequestMsg:
		s.handleRejectFriendRequest(context, msg)
	case *RemoveFriendMsg:
		s.handleRemoveFriend(context, msg)
	case *GetFriendsMsg:
		s.handleGetFriends(context, msg)
	case *GetPendingRequestsMsg:
		s.handleGetPendingRequests(context, msg)
	case *ConnectUserMsg:
		s.forwardPresence(context, msg.UserID, msg)
	case *DisconnectUserMsg:
		s.forwardPresence(context, msg.UserID, msg)
	}
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func respondRepoError(context actor.Context, err error) {
	if appErr, ok := err.(*utils.AppError); ok {
		context.Respond(appErr)
		return
	}
	context.Respond(utils.NewDatabaseError("Persistence failure", err))
}

func (s *UserSupervisor) handleRegister(context actor.Context, msg *RegisterUserMsg) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.Username == "" {
		context.Respond(utils.NewValidationError("Username is required"))
		return
	}
	if !emailPattern.MatchString(msg.Email) {
		context.Respond(utils.NewValidationError("A valid email is required"))
		return
	}
	if len(msg.Password) < 8 {
		context.Respond(utils.NewValidationError("Password must be at least 8 characters"))
		return
	}

	if _, exists := s.emailToID[msg.Email]; exists {
		context.Respond(utils.NewAppError(utils.ErrUserAlreadyExists, "Email already registered", nil))
		return
	}
	if s.mongodb != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
		defer cancel()
		existing, _ := s.mongodb.GetUserByEmail(ctx, msg.Email)
		if existing != nil {
			log.Printf("UserSupervisor: Email already registered: %s", msg.Email)
			context.Respond(utils.NewAppError(utils.ErrUserAlreadyExists, "Email already registered", nil))
			return
		}
	}

	hashed, err := hashPassword(msg.Password)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Failed to hash password", err))
		return
	}

	now := time.Now()
	user := &models.User{
		ID:              uuid.New(),
		Username:        msg.Username,
		Email:           msg.Email,
		HashedPassword:  hashed,
		FirstName:       msg.FirstName,
		LastName:        msg.LastName,
		Friends:         make([]uuid.UUID, 0),
		PendingRequests: make([]uuid.UUID, 0),
		LastActive:      now,
		CreatedAt:       now,
	}

	if s.mongodb != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
		defer cancel()
		if err := s.mongodb.SaveUser(ctx, user); err != nil {
			log.Printf("UserSupervisor: Failed to save user: %v", err)
			respondRepoError(context, err)
			return
		}
	}

	s.users[user.ID] = user
	s.emailToID[user.Email] = user.ID
	s.spawnPresence(context, user.ID)

	log.Printf("UserSupervisor: Registered user %s", user.ID)
	context.Respond(cloneUser(user))
}

func (s *UserSupervisor) handleLogin(context actor.Context, msg *LoginMsg) {
	log.Printf("UserSupervisor: Processing login for email: %s", msg.Email)

	user := s.lookupByEmail(msg.Email)
	if user == nil {
		context.Respond(&types.LoginResponse{Success: false, Error: "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(msg.Password)); err != nil {
		log.Printf("UserSupervisor: Password mismatch for %s", msg.Email)
		context.Respond(&types.LoginResponse{Success: false, Error: "Invalid credentials"})
		return
	}

	now := time.Now()
	s.mu.Lock()
	user.LastActive = now
	s.mu.Unlock()

	if s.mongodb != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
		defer cancel()
		if err := s.mongodb.UpdateUserActivity(ctx, user.ID, now); err != nil {
			log.Printf("UserSupervisor: Failed to update activity for %s: %v", user.ID, err)
		}
	}

	log.Printf("UserSupervisor: Login successful for user %s", user.Username)
	context.Respond(&types.LoginResponse{
		Success:  true,
		UserID:   user.ID.String(),
		Username: user.Username,
	})
}

func (s *UserSupervisor) handleGetProfile(context actor.Context, msg *GetUserProfileMsg) {
	user := s.lookupByID(msg.UserID)
	if user == nil {
		context.Respond(utils.NewUserNotFoundError(msg.UserID.String()))
		return
	}
	context.Respond(cloneUser(user))
}

func (s *UserSupervisor) handleUpdateProfile(context actor.Context, msg *UpdateProfileMsg) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[msg.UserID]
	if !exists {
		context.Respond(utils.NewUserNotFoundError(msg.UserID.String()))
		return
	}

	if msg.NewUsername != "" {
		user.Username = msg.NewUsername
	}
	if msg.NewFirstName != "" {
		user.FirstName = msg.NewFirstName
	}
	if msg.NewLastName != "" {
		user.LastName = msg.NewLastName
	}
	if msg.NewAvatar != "" {
		user.Avatar = msg.NewAvatar
	}

	if s.mongodb != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
		defer cancel()
		if err := s.mongodb.SaveUser(ctx, user); err != nil {
			log.Printf("UserSupervisor: Failed to persist profile for %s: %v", user.ID, err)
			respondRepoError(context, err)
			return
		}
	}

	context.Respond(cloneUser(user))
}

func (s *UserSupervisor) handleSendFriendRequest(context actor.Context, msg *SendFriendRequestMsg) {
	if msg.FromID == msg.ToID {
		context.Respond(utils.NewValidationError("Cannot send a friend request to yourself"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.users[msg.FromID]
	if !ok {
		context.Respond(utils.NewUserNotFoundError(msg.FromID.String()))
		return
	}
	to, ok := s.users[msg.ToID]
	if !ok {
		context.Respond(utils.NewUserNotFoundError(msg.ToID.String()))
		return
	}

	if containsID(from.Friends, msg.ToID) {
		context.Respond(utils.NewAppError(utils.ErrAlreadyFriends, "Users are already friends", nil))
		return
	}
	// Re-sending an existing request is a no-op, matching $addToSet.
	if !containsID(to.PendingRequests, msg.FromID) {
		to.PendingRequests = append(to.PendingRequests, msg.FromID)
	}

	if s.mongodb != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
		defer cancel()
		if err := s.mongodb.AddFriendRequest(ctx, msg.ToID, msg.FromID); err != nil {
			log.Printf("UserSupervisor: Failed to persist friend request %s -> %s: %v", msg.FromID, msg.ToID, err)
			respondRepoError(context, err)
			return
		}
	}

	context.Respond(true)
}

func (s *UserSupervisor) handleAcceptFriendRequest(context actor.Context, msg *AcceptFriendRequestMsg) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[msg.UserID]
	if !ok {
		context.Respond(utils.NewUserNotFoundError(msg.UserID.String()))
		return
	}
	requester, ok := s.users[msg.RequesterID]
	if !ok {
		context.Respond(utils.NewUserNotFoundError(msg.RequesterID.String()))
		return
	}

	if !containsID(user.PendingRequests, msg.RequesterID) {
		context.Respond(utils.NewAppError(utils.ErrNoFriendRequest, "No pending friend request from this user", nil))
		return
	}

	user.PendingRequests = removeID(user.PendingRequests, msg.RequesterID)
	if !containsID(user.Friends, msg.RequesterID) {
		user.Friends = append(user.Friends, msg.RequesterID)
	}
	if !containsID(requester.Friends, msg.UserID) {
		requester.Friends = append(requester.Friends, msg.UserID)
	}

	if s.mongodb != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
		defer cancel()
		if err := s.mongodb.RemoveFriendRequest(ctx, msg.UserID, msg.RequesterID); err != nil {
			log.Printf("UserSupervisor: Failed to clear friend request: %v", err)
		}
		if err := s.mongodb.UpdateUserFriends(ctx, msg.UserID, msg.RequesterID, true); err != nil {
			log.Printf("UserSupervisor: Failed to persist friendship: %v", err)
			respondRepoError(context, err)
			return
		}
		if err := s.mongodb.UpdateUserFriends(ctx, msg.RequesterID, msg.UserID, true); err != nil {
			log.Printf("UserSupervisor: Failed to persist friendship: %v", err)
			respondRepoError(context, err)
			return
		}
	}

	context.Respond(true)
}

func (s *UserSupervisor) handleRejectFriendRequest(context actor.Context, msg *RejectFriendRequestMsg) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[msg.UserID]
	if !ok {
		context.Respond(utils.NewUserNotFoundError(msg.UserID.String()))
		return
	}

	if !containsID(user.PendingRequests, msg.RequesterID) {
		context.Respond(utils.NewAppError(utils.ErrNoFriendRequest, "No pending friend request from this user", nil))
		return
	}
	user.PendingRequests = removeID(user.PendingRequests, msg.RequesterID)

	if s.mongodb != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
		defer cancel()
		if err := s.mongodb.RemoveFriendRequest(ctx, msg.UserID, msg.RequesterID); err != nil {
			log.Printf("UserSupervisor: Failed to clear friend request: %v", err)
			respondRepoError(context, err)
			return
		}
	}

	context.Respond(true)
}

func (s *UserSupervisor) handleRemoveFriend(context actor.Context, msg *RemoveFriendMsg) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[msg.UserID]
	if !ok {
		context.Respond(utils.NewUserNotFoundError(msg.UserID.String()))
		return
	}
	friend, ok := s.users[msg.FriendID]
	if !ok {
		context.Respond(utils.NewUserNotFoundError(msg.FriendID.String()))
		return
	}

	if !containsID(user.Friends, msg.FriendID) {
		context.Respond(utils.NewAppError(utils.ErrNotFound, "Users are not friends", nil))
		return
	}

	user.Friends = removeID(user.Friends, msg.FriendID)
	friend.Friends = removeID(friend.Friends, msg.UserID)

	if s.mongodb != nil {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
		defer cancel()
		if err := s.mongodb.UpdateUserFriends(ctx, msg.UserID, msg.FriendID, false); err != nil {
			log.Printf("UserSupervisor: Failed to remove friendship: %v", err)
			respondRepoError(context, err)
			return
		}
		if err := s.mongodb.UpdateUserFriends(ctx, msg.FriendID, msg.UserID, false); err != nil {
			log.Printf("UserSupervisor: Failed to remove friendship: %v", err)
			respondRepoError(context, err)
			return
		}
	}

	context.Respond(true)
}

func (s *UserSupervisor) handleGetFriends(context actor.Context, msg *GetFriendsMsg) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[msg.UserID]
	if !ok {
		context.Respond(utils.NewUserNotFoundError(msg.UserID.String()))
		return
	}

	friends := make([]*models.User, 0, len(user.Friends))
	for _, id := range user.Friends {
		if friend, ok := s.users[id]; ok {
			friends = append(friends, cloneUser(friend))
		}
	}
	context.Respond(friends)
}

func (s *UserSupervisor) handleGetPendingRequests(context actor.Context, msg *GetPendingRequestsMsg) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[msg.UserID]
	if !ok {
		context.Respond(utils.NewUserNotFoundError(msg.UserID.String()))
		return
	}

	requesters := make([]*models.User, 0, len(user.PendingRequests))
	for _, id := range user.PendingRequests {
		if requester, ok := s.users[id]; ok {
			requesters = append(requesters, cloneUser(requester))
		}
	}
	context.Respond(requesters)
}

// lookupByEmail resolves an account, falling back to MongoDB for users
// registered before this process started.
func (s *UserSupervisor) lookupByEmail(email string) *models.User {
	s.mu.RLock()
	if id, ok := s.emailToID[email]; ok {
		user := s.users[id]
		s.mu.RUnlock()
		return user
	}
	s.mu.RUnlock()

	if s.mongodb == nil {
		return nil
	}

	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
	defer cancel()
	user, err := s.mongodb.GetUserByEmail(ctx, email)
	if err != nil {
		return nil
	}

	s.mu.Lock()
	s.users[user.ID] = user
	s.emailToID[user.Email] = user.ID
	s.mu.Unlock()
	return user
}

func (s *UserSupervisor) lookupByID(userID uuid.UUID) *models.User {
	s.mu.RLock()
	if user, ok := s.users[userID]; ok {
		s.mu.RUnlock()
		return user
	}
	s.mu.RUnlock()

	if s.mongodb == nil {
		return nil
	}

	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
	defer cancel()
	user, err := s.mongodb.GetUser(ctx, userID)
	if err != nil {
		return nil
	}

	s.mu.Lock()
	s.users[user.ID] = user
	s.emailToID[user.Email] = user.ID
	s.mu.Unlock()
	return user
}

func (s *UserSupervisor) spawnPresence(context actor.Context, userID uuid.UUID) *actor.PID {
	if pid, ok := s.presence[userID]; ok {
		return pid
	}
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewUserActor(userID, s.mongodb)
	})
	pid := context.Spawn(props)
	s.presence[userID] = pid
	return pid
}

func (s *UserSupervisor) forwardPresence(context actor.Context, userID uuid.UUID, msg interface{}) {
	if s.lookupByID(userID) == nil {
		context.Respond(utils.NewUserNotFoundError(userID.String()))
		return
	}

	s.mu.Lock()
	pid := s.spawnPresence(context, userID)
	s.mu.Unlock()

	context.RequestWithCustomSender(pid, msg, context.Sender())
}

func cloneUser(user *models.User) *models.User {
	clone := *user
	clone.Friends = append([]uuid.UUID(nil), user.Friends...)
	clone.PendingRequests = append([]uuid.UUID(nil), user.PendingRequests...)
	return &clone
}

func containsID(ids []uuid.UUID, target uuid.UUID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

func removeID(ids []uuid.UUID, target uuid.UUID) []uuid.UUID {
	kept := ids[:0]
	for _, id := range ids {
		if id != target {
			kept = append(kept, id)
		}
	}
	return kept
}

// UserActor tracks one user's presence. Account data lives in the
// supervisor; keeping presence per user means a flapping connection never
// contends with registry operations.
type UserActor struct {
	id          uuid.UUID
	isConnected bool
	lastActive  time.Time
	mongodb     *database.MongoDB
}

func NewUserActor(id uuid.UUID, mongodb *database.MongoDB) *UserActor {
	return &UserActor{
		id:         id,
		lastActive: time.Now(),
		mongodb:    mongodb,
	}
}

func (a *UserActor) Receive(context actor.Context) {
	switch context.Message().(type) {
	case *ConnectUserMsg:
		a.isConnected = true
		a.lastActive = time.Now()
		a.persistActivity()
		context.Respond(true)

	case *DisconnectUserMsg:
		a.isConnected = false
		a.persistActivity()
		context.Respond(true)
	}
}

func (a *UserActor) persistActivity() {
	if a.mongodb == nil {
		return
	}
	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), persistTimeout)
	defer cancel()
	if err := a.mongodb.UpdateUserActivity(ctx, a.id, a.lastActive); err != nil {
		log.Printf("UserActor: Failed to persist activity for %s: %v", a.id, err)
	}
}
