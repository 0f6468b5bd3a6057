package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	chatdomain "group_chat_service/internal/chat/domain"
	chatrepo "group_chat_service/internal/chat/repository"
	"group_chat_service/internal/member/domain"
	"group_chat_service/internal/member/repository"
	"group_chat_service/pkg/database"
	"group_chat_service/pkg/encrypt"
	"group_chat_service/pkg/logger"
	testtool "group_chat_service/pkg/test_tool"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// **測試用的容器**
var postgresContainer testcontainers.Container
var redisContainer testcontainers.Container

// **UseCase**
var memberUsecase MemberUseCase

var testConvRepo chatrepo.ConversationRepository
var testMsgRepo chatrepo.MessageRepository
var testMemberRepo repository.MemberRepository
var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	logger.SetNewNop()
	ctx := context.Background()
	var err error

	// **啟動 PostgreSQL**
	postgresContainer, postgresHost, postgresPort, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image: "postgres:latest",
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp"),
	})
	if err != nil {
		log.Fatalf("❌ Failed to start PostgreSQL container: %v", err)
	}
	fmt.Printf("✅ PostgreSQL running at %s:%s\n", postgresHost, postgresPort)

	// **啟動 Redis**
	redisContainer, redisHost, redisPort, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "redis:latest",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	})
	if err != nil {
		log.Fatalf("❌ Failed to start Redis container: %v", err)
	}
	fmt.Printf("✅ Redis running at %s:%s\n", redisHost, redisPort)

	// **設定環境變數**
	os.Setenv("DATABASE_URL", fmt.Sprintf("host=%s port=%s user=test password=test dbname=testdb sslmode=disable", postgresHost, postgresPort))
	os.Setenv("PG_URL", fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", postgresHost, postgresPort))
	os.Setenv("REDIS_URL", fmt.Sprintf("%s:%s", redisHost, redisPort))

	// **等待 PostgreSQL 確保已經準備好**
	time.Sleep(5 * time.Second)

	// **初始化資料庫**
	db, err := database.NewGormConnection(database.Connection{
		ConnectStr:    os.Getenv("DATABASE_URL"),
		RetryCount:    5,
		RetryInterval: 5,
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to PostgreSQL: %v", err)
	}

	testPool, err = database.NewDatabaseConnection(database.Connection{
		ConnectStr:    os.Getenv("PG_URL"),
		RetryCount:    5,
		RetryInterval: 5,
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect pgx pool: %v", err)
	}

	// 套用 schema
	schema, err := os.ReadFile("../../../migrations/0001_chat_schema.up.sql")
	if err != nil {
		log.Fatalf("❌ Failed to read schema: %v", err)
	}
	if _, err := testPool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("❌ Failed to apply schema: %v", err)
	}

	// **初始化 Redis**
	redisClient := redis.NewClient(&redis.Options{
		Addr: os.Getenv("REDIS_URL"),
		DB:   0,
	})
	redisRepo := database.NewRedisRepository[domain.MemberSession](redisClient)
	fmt.Println("✅ Connected to Redis successfully!")

	// **初始化 Repository**
	testMemberRepo = repository.NewMemberRepository(db)
	testConvRepo = chatrepo.NewConversationRepository(testPool)
	testMsgRepo = chatrepo.NewMessageRepository(testPool)

	// **初始化 UseCase**
	memberUsecase = NewMemberUseCase(testMemberRepo, testConvRepo, testMsgRepo, time.Hour, redisRepo)

	// 預設member資料
	hashed, err := encrypt.HashPassword(defaultPassword)
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}
	err = testMemberRepo.CreateUser(ctx, &domain.Member{
		MemberID:  defaultMemberID,
		Email:     defaultEmail,
		Password:  hashed,
		Role:      "member",
		CreatedAt: time.Now(),
	})
	if err != nil {
		log.Fatalf("❌ Failed to seed member: %v", err)
	}

	// **執行測試**
	code := m.Run()

	// **停止測試容器**
	_ = postgresContainer.Terminate(ctx)
	_ = redisContainer.Terminate(ctx)

	os.Exit(code)
}

var (
	// 預設member資料
	defaultMemberID = "550e8400-e29b-41d4-a716-446655440000"
	defaultEmail    = "test@example.com"
	defaultPassword = "!Password123"

	email     = "testIntegration@integration.com"
	pw        = "!Integration123"
	pwInvalid = "pw123"
)

// **測試會員註冊**
func TestMemberRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Email 已存在", func(t *testing.T) {
		err := memberUsecase.Register(ctx, defaultEmail, defaultPassword)

		assert.Error(t, err)
		assert.Equal(t, "email already exists", err.Error())
		fmt.Println("✅ Register Response: Email 已存在")
	})

	t.Run("密碼強度不足", func(t *testing.T) {
		err := memberUsecase.Register(ctx, email, pwInvalid)

		assert.Error(t, err)
		fmt.Println("✅ Register Response: 密碼強度不足")
	})

	t.Run("註冊成功", func(t *testing.T) {
		err := memberUsecase.Register(ctx, email, pw)

		assert.NoError(t, err)
		fmt.Println("✅ Register Response: 註冊成功")
	})
}

// **測試取得會員**
func TestFindMember(t *testing.T) {
	ctx := context.Background()

	t.Run("找不到會員", func(t *testing.T) {
		unknown := "unknown@none.com"
		_, err := memberUsecase.FindMember(ctx, &domain.MemberQuery{Email: &unknown})

		assert.Error(t, err)
		fmt.Println("✅ findMember Response: 找不到會員")
	})

	t.Run("找到會員", func(t *testing.T) {
		member, err := memberUsecase.FindMember(ctx, &domain.MemberQuery{Email: &defaultEmail})

		assert.NoError(t, err)
		assert.Equal(t, defaultMemberID, member.MemberID)
		fmt.Println("✅ findMember Response:", member.Email)
	})
}

// **測試會員登入**
func TestMemberLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("找不到會員", func(t *testing.T) {
		token, err := memberUsecase.Login(ctx, email+"unFind", pw)

		assert.Error(t, err)
		assert.Empty(t, token)
		fmt.Println("✅ Login Response: 找不到會員")
	})

	t.Run("密碼錯誤", func(t *testing.T) {
		token, err := memberUsecase.Login(ctx, defaultEmail, pwInvalid)

		assert.Error(t, err)
		assert.Empty(t, token)
		fmt.Println("✅ Login Response: 密碼錯誤")
	})

	t.Run("成功登入", func(t *testing.T) {
		token, err := memberUsecase.Login(ctx, defaultEmail, defaultPassword)

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		fmt.Println("✅ Login Response: 成功登入")
	})
}

// **測試會員登出**
func TestMemberLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("無效 Token", func(t *testing.T) {
		err := memberUsecase.Logout(ctx, "invalid_token")

		assert.Error(t, err)
		fmt.Println("✅ Logout Response: 無效 Token")
	})

	t.Run("成功登出", func(t *testing.T) {
		// 1️⃣ 先登入取得有效 Token
		token, err := memberUsecase.Login(ctx, defaultEmail, defaultPassword)
		assert.NoError(t, err)

		// 2️⃣ 使用該 Token 來登出
		err = memberUsecase.Logout(ctx, token)

		assert.NoError(t, err)
		fmt.Println("✅ Logout Response: 成功登出")
	})
}

// **測試檢查 Session 過期**
func TestCheckSessionTimeout(t *testing.T) {
	ctx := context.Background()

	t.Run("token 錯誤", func(t *testing.T) {
		expire, err := memberUsecase.CheckSessionTimeout(ctx, "expired_token")

		assert.Error(t, err)
		assert.True(t, expire)
		fmt.Println("✅ CheckSessionTimeout Response: token 錯誤")
	})

	t.Run("Session 過期", func(t *testing.T) {
		token, err := memberUsecase.Login(ctx, defaultEmail, defaultPassword)
		assert.NoError(t, err)

		err = memberUsecase.Logout(ctx, token)
		assert.NoError(t, err)

		expire, _ := memberUsecase.CheckSessionTimeout(ctx, token)
		assert.True(t, expire)
		fmt.Println("✅ CheckSessionTimeout Response: Session 過期")
	})

	t.Run("Session 有效", func(t *testing.T) {
		// 1️⃣ 先登入取得有效 Token
		token, err := memberUsecase.Login(ctx, defaultEmail, defaultPassword)
		assert.NoError(t, err)

		// 2️⃣ 使用該 Token 來檢查 Session
		expire, err := memberUsecase.CheckSessionTimeout(ctx, token)

		assert.NoError(t, err)
		assert.False(t, expire)
		fmt.Println("✅ CheckSessionTimeout Response: Session 有效")
	})
}

// **測試重新連線**
func TestReconnectSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Token 無效", func(t *testing.T) {
		err := memberUsecase.ReconnectSession(ctx, "invalid_token")

		assert.Error(t, err)
		fmt.Println("✅ ReconnectSession Response: Token 無效")
	})

	t.Run("成功重連", func(t *testing.T) {
		// 1️⃣ 先登入取得有效 Token
		token, err := memberUsecase.Login(ctx, defaultEmail, defaultPassword)
		assert.NoError(t, err)

		// 2️⃣ 使用該 Token 來重新連線
		err = memberUsecase.ReconnectSession(ctx, token)

		assert.NoError(t, err)
		fmt.Println("✅ ReconnectSession Response: 成功重連")
	})
}

// **測試刪除會員**
// 刪除後 conversation 逐一退出，已發送的訊息本體保留
func TestMemberDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("會員不存在", func(t *testing.T) {
		err := memberUsecase.Delete(ctx, "non-existent-id")

		assert.Error(t, err)
		fmt.Println("✅ Delete Response: 會員不存在")
	})

	t.Run("成功刪除", func(t *testing.T) {
		// 1️⃣ 建立要刪除的會員
		doomedEmail := "doomed@integration.com"
		err := memberUsecase.Register(ctx, doomedEmail, pw)
		assert.NoError(t, err)
		doomed, err := memberUsecase.FindMember(ctx, &domain.MemberQuery{Email: &doomedEmail})
		assert.NoError(t, err)

		// 2️⃣ 建立 conversation 並送出一則訊息
		conv := chatdomain.Conversation{
			ID:        uuid.New().String(),
			CreatedAt: time.Now(),
			Members:   []string{doomed.MemberID, defaultMemberID},
		}
		err = testConvRepo.Create(ctx, &conv)
		assert.NoError(t, err)

		msg := chatdomain.Message{
			ID:             uuid.New().String(),
			ConversationID: conv.ID,
			SenderID:       doomed.MemberID,
			Content:        "message should survive",
			SentAt:         time.Now(),
		}
		err = testMsgRepo.Create(ctx, &msg)
		assert.NoError(t, err)

		// 3️⃣ 刪除會員
		err = memberUsecase.Delete(ctx, doomed.MemberID)
		assert.NoError(t, err)

		// 會員資料消失
		_, err = memberUsecase.FindMember(ctx, &domain.MemberQuery{MemberID: &doomed.MemberID})
		assert.Error(t, err)

		// conversation 還剩 defaultMember 一人
		remain, err := testConvRepo.FindByID(ctx, conv.ID)
		assert.NoError(t, err)
		assert.NotNil(t, remain)
		assert.Equal(t, 1, remain.NumUsers)

		// 訊息本體保留
		var content string
		err = testPool.QueryRow(ctx,
			`SELECT content FROM messages WHERE id = $1`, msg.ID).Scan(&content)
		assert.NoError(t, err)
		assert.Equal(t, "message should survive", content)

		fmt.Println("✅ Delete Response: 成功刪除")
	})
}
