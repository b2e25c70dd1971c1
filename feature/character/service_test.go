package character

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"character-manager/core/protocol"
	"character-manager/feature/character/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// recordingPublisher captures published envelopes for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []protocol.Envelope
	rooms  []uint
}

func (p *recordingPublisher) Publish(characterID uint, ev protocol.Envelope) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	p.rooms = append(p.rooms, characterID)
}

func (p *recordingPublisher) published() []protocol.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]protocol.Envelope(nil), p.events...)
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Character{}, &models.Ability{}, &models.Equipment{}))
	return db
}

// setupMockDB creates a mock GORM DB for driving error paths.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func setupService(t *testing.T) (*Service, *recordingPublisher) {
	pub := &recordingPublisher{}
	return NewService(setupTestDB(t), pub, zap.NewNop()), pub
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestCreateCharacterDefaults(t *testing.T) {
	svc, pub := setupService(t)

	char, err := svc.CreateCharacter(context.Background(), CharacterInput{})
	require.NoError(t, err)
	assert.Equal(t, "Unnamed", char.Name)
	assert.Equal(t, 1, char.Level)
	assert.NotZero(t, char.ID)
	assert.Empty(t, pub.published(), "character creation is not broadcast; nobody has joined yet")
}

func TestCreateCharacterWithFields(t *testing.T) {
	svc, _ := setupService(t)

	char, err := svc.CreateCharacter(context.Background(), CharacterInput{
		Name:           strPtr("Mialee"),
		Race:           strPtr("Elf"),
		CharacterClass: strPtr("Wizard"),
		Level:          intPtr(3),
	})
	require.NoError(t, err)
	assert.Equal(t, "Mialee", char.Name)
	assert.Equal(t, "Elf", char.Race)
	assert.Equal(t, "Wizard", char.CharacterClass)
	assert.Equal(t, 3, char.Level)
}

func TestGetCharacterNotFound(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.GetCharacter(context.Background(), 999)
	assert.ErrorIs(t, err, ErrCharacterNotFound)
}

func TestUpdateCharacterBroadcastsStatus(t *testing.T) {
	svc, pub := setupService(t)
	char, err := svc.CreateCharacter(context.Background(), CharacterInput{Name: strPtr("Tordek")})
	require.NoError(t, err)

	updated, err := svc.UpdateCharacter(context.Background(), char.ID, CharacterInput{Level: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Level)
	assert.Equal(t, "Tordek", updated.Name, "untouched fields survive a partial update")

	events := pub.published()
	require.Len(t, events, 1)
	assert.Equal(t, protocol.EventBroadcastStatus, events[0].Event)
}

func TestUpdateCharacterNoFieldsIsQuiet(t *testing.T) {
	svc, pub := setupService(t)
	char, err := svc.CreateCharacter(context.Background(), CharacterInput{})
	require.NoError(t, err)

	_, err = svc.UpdateCharacter(context.Background(), char.ID, CharacterInput{})
	require.NoError(t, err)
	assert.Empty(t, pub.published(), "an empty update must not spam the room")
}

func TestDeleteCharacterCascades(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	char, err := svc.CreateCharacter(ctx, CharacterInput{})
	require.NoError(t, err)

	_, err = svc.CreateAbility(ctx, char.ID, AbilityInput{Name: "STR", Score: intPtr(15)})
	require.NoError(t, err)
	_, err = svc.CreateEquipment(ctx, char.ID, EquipmentInput{Name: strPtr("Longsword")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCharacter(ctx, char.ID))

	_, err = svc.GetCharacter(ctx, char.ID)
	assert.ErrorIs(t, err, ErrCharacterNotFound)

	var count int64
	svc.db.Model(&models.Ability{}).Where("character_id = ?", char.ID).Count(&count)
	assert.Zero(t, count)
	svc.db.Model(&models.Equipment{}).Where("character_id = ?", char.ID).Count(&count)
	assert.Zero(t, count)
}

func TestCreateAbility(t *testing.T) {
	svc, pub := setupService(t)
	ctx := context.Background()
	char, err := svc.CreateCharacter(ctx, CharacterInput{})
	require.NoError(t, err)

	ability, err := svc.CreateAbility(ctx, char.ID, AbilityInput{Name: "DEX", Score: intPtr(13)})
	require.NoError(t, err)
	assert.Equal(t, "DEX", ability.Name)
	assert.Equal(t, 13, ability.Score)

	// The aggregate holds exactly the one row that was created.
	loaded, err := svc.GetCharacter(ctx, char.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Abilities, 1)
	assert.Equal(t, ability.ID, loaded.Abilities[0].ID)

	events := pub.published()
	require.Len(t, events, 1)
	assert.Equal(t, protocol.EventAbilityCreated, events[0].Event)

	msg, err := events[0].Decode()
	require.NoError(t, err)
	created := msg.(protocol.AbilityCreated)
	assert.Equal(t, char.ID, created.CharacterID)
	assert.Equal(t, ability.Wire(), created.Ability)
}

func TestCreateAbilityDefaultScore(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	char, err := svc.CreateCharacter(ctx, CharacterInput{})
	require.NoError(t, err)

	ability, err := svc.CreateAbility(ctx, char.ID, AbilityInput{Name: "WIS"})
	require.NoError(t, err)
	assert.Equal(t, 10, ability.Score)
}

func TestCreateAbilityInvalidName(t *testing.T) {
	svc, pub := setupService(t)
	ctx := context.Background()
	char, err := svc.CreateCharacter(ctx, CharacterInput{})
	require.NoError(t, err)

	_, err = svc.CreateAbility(ctx, char.ID, AbilityInput{Name: "LUCK"})
	assert.ErrorIs(t, err, ErrInvalidAbility)
	assert.Empty(t, pub.published(), "rejected mutations are never broadcast")
}

func TestCreateAbilityForMissingCharacter(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.CreateAbility(context.Background(), 42, AbilityInput{Name: "STR"})
	assert.ErrorIs(t, err, ErrCharacterNotFound)
}

func TestUpdateAbility(t *testing.T) {
	svc, pub := setupService(t)
	ctx := context.Background()
	char, err := svc.CreateCharacter(ctx, CharacterInput{})
	require.NoError(t, err)
	ability, err := svc.CreateAbility(ctx, char.ID, AbilityInput{Name: "CON", Score: intPtr(14)})
	require.NoError(t, err)

	updated, err := svc.UpdateAbility(ctx, char.ID, ability.ID, AbilityInput{Score: intPtr(16)})
	require.NoError(t, err)
	assert.Equal(t, 16, updated.Score)

	events := pub.published()
	require.Len(t, events, 2)
	assert.Equal(t, protocol.EventAbilityUpdated, events[1].Event)
}

func TestUpdateAbilityNotFound(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	char, err := svc.CreateCharacter(ctx, CharacterInput{})
	require.NoError(t, err)

	_, err = svc.UpdateAbility(ctx, char.ID, 77, AbilityInput{Score: intPtr(16)})
	assert.ErrorIs(t, err, ErrAbilityNotFound)
}

func TestAbilityScopedToOwner(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	owner, err := svc.CreateCharacter(ctx, CharacterInput{})
	require.NoError(t, err)
	other, err := svc.CreateCharacter(ctx, CharacterInput{})
	require.NoError(t, err)
	ability, err := svc.CreateAbility(ctx, owner.ID, AbilityInput{Name: "INT"})
	require.NoError(t, err)

	// Reaching another character's ability through the wrong path is a 404.
	_, err = svc.GetAbility(ctx, other.ID, ability.ID)
	assert.ErrorIs(t, err, ErrAbilityNotFound)
}

func TestDeleteAbility(t *testing.T) {
	svc, pub := setupService(t)
	ctx := context.Background()
	char, err := svc.CreateCharacter(ctx, CharacterInput{})
	require.NoError(t, err)
	ability, err := svc.CreateAbility(ctx, char.ID, AbilityInput{Name: "CHA"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAbility(ctx, char.ID, ability.ID))

	_, err = svc.GetAbility(ctx, char.ID, ability.ID)
	assert.ErrorIs(t, err, ErrAbilityNotFound)

	events := pub.published()
	require.Len(t, events, 2)
	assert.Equal(t, protocol.EventAbilityDeleted, events[1].Event)

	msg, err := events[1].Decode()
	require.NoError(t, err)
	assert.Equal(t, ability.ID, msg.(protocol.AbilityDeleted).AbilityID)
}

func TestDeleteAbilityNotFound(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	char, err := svc.CreateCharacter(ctx, CharacterInput{})
	require.NoError(t, err)

	err = svc.DeleteAbility(ctx, char.ID, 123)
	assert.ErrorIs(t, err, ErrAbilityNotFound)
}

func TestCreateEquipment(t *testing.T) {
	svc, pub := setupService(t)
	ctx := context.Background()
	char, err := svc.CreateCharacter(ctx, CharacterInput{})
	require.NoError(t, err)

	equip, err := svc.CreateEquipment(ctx, char.ID, EquipmentInput{Name: strPtr("Torch"), Quantity: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, "Torch", equip.Name)
	assert.Equal(t, 5, equip.Quantity)

	events := pub.published()
	require.Len(t, events, 1)
	assert.Equal(t, protocol.EventEquipmentCreated, events[0].Event)
}

func TestCreateEquipmentDefaultQuantity(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	char, err := svc.CreateCharacter(ctx, CharacterInput{})
	require.NoError(t, err)

	equip, err := svc.CreateEquipment(ctx, char.ID, EquipmentInput{Name: strPtr("Rope")})
	require.NoError(t, err)
	assert.Equal(t, 1, equip.Quantity)
}

func TestCreateEquipmentRequiresName(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	char, err := svc.CreateCharacter(ctx, CharacterInput{})
	require.NoError(t, err)

	_, err = svc.CreateEquipment(ctx, char.ID, EquipmentInput{})
	assert.ErrorIs(t, err, ErrEquipmentName)

	_, err = svc.CreateEquipment(ctx, char.ID, EquipmentInput{Name: strPtr("")})
	assert.ErrorIs(t, err, ErrEquipmentName)
}

func TestUpdateEquipment(t *testing.T) {
	svc, pub := setupService(t)
	ctx := context.Background()
	char, err := svc.CreateCharacter(ctx, CharacterInput{})
	require.NoError(t, err)
	equip, err := svc.CreateEquipment(ctx, char.ID, EquipmentInput{Name: strPtr("Rations"), Quantity: intPtr(10)})
	require.NoError(t, err)

	updated, err := svc.UpdateEquipment(ctx, char.ID, equip.ID, EquipmentInput{Quantity: intPtr(9)})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Quantity)
	assert.Equal(t, "Rations", updated.Name)

	events := pub.published()
	require.Len(t, events, 2)
	assert.Equal(t, protocol.EventEquipmentUpdated, events[1].Event)
}

func TestDeleteEquipment(t *testing.T) {
	svc, pub := setupService(t)
	ctx := context.Background()
	char, err := svc.CreateCharacter(ctx, CharacterInput{})
	require.NoError(t, err)
	equip, err := svc.CreateEquipment(ctx, char.ID, EquipmentInput{Name: strPtr("Shield")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEquipment(ctx, char.ID, equip.ID))

	_, err = svc.GetEquipment(ctx, char.ID, equip.ID)
	assert.ErrorIs(t, err, ErrEquipmentNotFound)

	events := pub.published()
	require.Len(t, events, 2)
	assert.Equal(t, protocol.EventEquipmentDeleted, events[1].Event)
}

func TestListCharactersOrdered(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		_, err := svc.CreateCharacter(ctx, CharacterInput{Name: strPtr(name)})
		require.NoError(t, err)
	}

	chars, err := svc.ListCharacters(ctx)
	require.NoError(t, err)
	require.Len(t, chars, 3)
	assert.Equal(t, "Alpha", chars[0].Name)
	assert.Equal(t, "Gamma", chars[2].Name)
}

func TestListCharactersDatabaseFailure(t *testing.T) {
	db, sqlMock := setupMockDB(t)
	svc := NewService(db, &recordingPublisher{}, zap.NewNop())

	sqlMock.ExpectQuery(".*").WillReturnError(assert.AnError)

	_, err := svc.ListCharacters(context.Background())
	assert.ErrorContains(t, err, "failed to list characters")
}

func TestCreateCharacterDatabaseFailure(t *testing.T) {
	db, sqlMock := setupMockDB(t)
	svc := NewService(db, &recordingPublisher{}, zap.NewNop())

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(".*").WillReturnError(assert.AnError)
	sqlMock.ExpectRollback()

	_, err := svc.CreateCharacter(context.Background(), CharacterInput{})
	assert.ErrorContains(t, err, "failed to create character")
}
