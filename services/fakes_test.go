package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/dartclub/league-system/models"
	"github.com/dartclub/league-system/repositories"
)

// In-memory repository fakes backing the service tests.

type fakePlayerRepo struct {
	mu      sync.Mutex
	players map[int]*models.Player
	nextID  int
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: make(map[int]*models.Player), nextID: 1}
}

func (r *fakePlayerRepo) add(player *models.Player) *models.Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	if player.ID == 0 {
		player.ID = r.nextID
		r.nextID++
	} else if player.ID >= r.nextID {
		r.nextID = player.ID + 1
	}
	r.players[player.ID] = player
	return player
}

func (r *fakePlayerRepo) Create(ctx context.Context, player *models.Player) error {
	r.add(player)
	return nil
}

func (r *fakePlayerRepo) GetByID(ctx context.Context, id int) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	player, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return player, nil
}

func (r *fakePlayerRepo) GetByAutodartsUsername(ctx context.Context, username string) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, player := range r.players {
		if strings.EqualFold(player.AutodartsUsername, username) {
			return player, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r *fakePlayerRepo) GetByAutodartsUserID(ctx context.Context, userID string) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, player := range r.players {
		if player.AutodartsUserID != nil && *player.AutodartsUserID == userID {
			return player, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r *fakePlayerRepo) List(ctx context.Context) ([]*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int, 0, len(r.players))
	for id := range r.players {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*models.Player, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.players[id])
	}
	return out, nil
}

func (r *fakePlayerRepo) UpdateAutodartsUserID(ctx context.Context, exec repositories.SQLExecutor, playerID int, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	player, ok := r.players[playerID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	player.AutodartsUserID = &userID
	return nil
}

func (r *fakePlayerRepo) UpdateAvatarKey(ctx context.Context, playerID int, avatarKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	player, ok := r.players[playerID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	player.AvatarKey = avatarKey
	return nil
}

func (r *fakePlayerRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[id]; !ok {
		return repositories.ErrPlayerNotFound
	}
	delete(r.players, id)
	return nil
}

type fakeTournamentRepo struct {
	mu          sync.Mutex
	tournaments map[int]*models.Tournament
	nextID      int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament), nextID: 1}
}

func (r *fakeTournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, tournament *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tournament.ID = r.nextID
	r.nextID++
	r.tournaments[tournament.ID] = tournament
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tournament, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return tournament, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context) ([]*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) ListByStatus(ctx context.Context, status models.TournamentStatus) ([]*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Tournament, 0)
	for _, t := range r.tournaments {
		if t.Status == status {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tournament, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	tournament.Status = status
	return nil
}

func (r *fakeTournamentRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

type fakeTournamentPlayerRepo struct {
	mu     sync.Mutex
	links  []*models.TournamentPlayer
	nextID int
}

func newFakeTournamentPlayerRepo() *fakeTournamentPlayerRepo {
	return &fakeTournamentPlayerRepo{nextID: 1}
}

func (r *fakeTournamentPlayerRepo) Create(ctx context.Context, exec repositories.SQLExecutor, tp *models.TournamentPlayer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tp.ID = r.nextID
	r.nextID++
	r.links = append(r.links, tp)
	return nil
}

func (r *fakeTournamentPlayerRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentPlayer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.TournamentPlayer, 0)
	for _, link := range r.links {
		if link.TournamentID == tournamentID {
			out = append(out, link)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seed < out[j].Seed })
	return out, nil
}

func (r *fakeTournamentPlayerRepo) ListPlayerIDs(ctx context.Context, tournamentID int) ([]int, error) {
	links, _ := r.ListByTournament(ctx, tournamentID)
	ids := make([]int, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.PlayerID)
	}
	return ids, nil
}

func (r *fakeTournamentPlayerRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.links[:0]
	for _, link := range r.links {
		if link.TournamentID != tournamentID {
			kept = append(kept, link)
		}
	}
	r.links = kept
	return nil
}

type fakeFixtureRepo struct {
	mu       sync.Mutex
	fixtures map[int]*models.Fixture
	nextID   int
}

func newFakeFixtureRepo() *fakeFixtureRepo {
	return &fakeFixtureRepo{fixtures: make(map[int]*models.Fixture), nextID: 1}
}

func (r *fakeFixtureRepo) Create(ctx context.Context, exec repositories.SQLExecutor, fixture *models.Fixture) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fixture.ID = r.nextID
	r.nextID++
	r.fixtures[fixture.ID] = fixture
	return nil
}

func (r *fakeFixtureRepo) CreateAll(ctx context.Context, exec repositories.SQLExecutor, fixtures []*models.Fixture) error {
	for _, f := range fixtures {
		if err := r.Create(ctx, exec, f); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeFixtureRepo) GetByID(ctx context.Context, id int) (*models.Fixture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fixture, ok := r.fixtures[id]
	if !ok {
		return nil, repositories.ErrFixtureNotFound
	}
	return fixture, nil
}

func (r *fakeFixtureRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Fixture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Fixture, 0)
	for _, f := range r.fixtures {
		if f.TournamentID == tournamentID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoundNumber != out[j].RoundNumber {
			return out[i].RoundNumber < out[j].RoundNumber
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeFixtureRepo) ListByRound(ctx context.Context, tournamentID, roundNumber int) ([]*models.Fixture, error) {
	all, _ := r.ListByTournament(ctx, tournamentID)
	out := make([]*models.Fixture, 0)
	for _, f := range all {
		if f.RoundNumber == roundNumber {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeFixtureRepo) ListCompletedByTournament(ctx context.Context, tournamentID int) ([]*models.Fixture, error) {
	all, _ := r.ListByTournament(ctx, tournamentID)
	out := make([]*models.Fixture, 0)
	for _, f := range all {
		if f.Status == models.FixtureCompleted {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeFixtureRepo) SubmitResult(ctx context.Context, exec repositories.SQLExecutor, fixtureID int, result repositories.FixtureResultUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fixture, ok := r.fixtures[fixtureID]
	if !ok {
		return repositories.ErrFixtureNotFound
	}
	if fixture.Status == models.FixtureCompleted {
		return repositories.ErrFixtureAlreadyCompleted
	}
	homeLegs, awayLegs := result.HomeLegsWon, result.AwayLegsWon
	playedAt := result.PlayedAt
	fixture.HomeLegsWon = &homeLegs
	fixture.AwayLegsWon = &awayLegs
	fixture.HomeAverage = result.HomeAverage
	fixture.AwayAverage = result.AwayAverage
	fixture.AutodartsGameID = result.AutodartsGameID
	fixture.PlayedAt = &playedAt
	fixture.Status = models.FixtureCompleted
	return nil
}

func (r *fakeFixtureRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, fixtureID int, status models.FixtureStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fixture, ok := r.fixtures[fixtureID]
	if !ok {
		return repositories.ErrFixtureNotFound
	}
	fixture.Status = status
	return nil
}

func (r *fakeFixtureRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, f := range r.fixtures {
		if f.TournamentID == tournamentID {
			delete(r.fixtures, id)
		}
	}
	return nil
}

type broadcastCall struct {
	room    string
	message interface{}
}

type fakeBroadcaster struct {
	mu    sync.Mutex
	calls []broadcastCall
}

func (b *fakeBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, broadcastCall{room: roomID, message: message})
}

func (b *fakeBroadcaster) messagesOfType(eventType string) []LiveMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]LiveMessage, 0)
	for _, call := range b.calls {
		if msg, ok := call.message.(LiveMessage); ok && msg.Type == eventType {
			out = append(out, msg)
		}
	}
	return out
}
