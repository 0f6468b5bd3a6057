package app

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"group_chat_service/internal/chat/domain"
	"group_chat_service/internal/chat/repository"
	"group_chat_service/internal/delivery"
	"group_chat_service/pkg/logger"
	"group_chat_service/pkg/middlewares"
)

// ChatWebsocketHandler 可包含所有需要的 UseCase
type ChatWebsocketHandler struct {
	convUC    *ConversationUseCase
	messageUC *SendMessageUseCase
	pubSub    repository.PubSub
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(
	convUC *ConversationUseCase,
	messageUC *SendMessageUseCase,
	pubSub repository.PubSub,
) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		convUC:    convUC,
		messageUC: messageUC,
		pubSub:    pubSub,
	}
}

// HandleConnection 是 WebSocket 連線的進入點
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	tokenMember := conn.Locals(middlewares.TokenMemberID)
	memberID, ok := tokenMember.(string)
	logger.Log.Info("websocket handle memberID", zap.String("memberID", memberID), zap.String("ok", strconv.FormatBool(ok)))

	admin, _ := conn.Locals(middlewares.TokenAdmin).(bool)

	ticker := time.NewTicker(10 * time.Minute)
	ctxClose, cancel := context.WithCancel(context.Background())

	// 這條連線目前訂閱的 conversation channel，斷線時一併取消
	// 每條連線各自持有，互不干擾
	var convCancel context.CancelFunc

	defer func() {
		ticker.Stop()
		logger.Log.Info("websocket close", zap.String("memberID", memberID))
		conn.Close()
		cancel()
		if convCancel != nil {
			convCancel()
		}
	}()

	//client發出close
	//fiber會自動處理(在read msg 回傳err),故需要SetCloseHandler另外接出
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})

	//server發出ping之後client連線正常會回pong
	//fiber會自動處理回傳pong,故需要SetPongHandler另外接出
	conn.SetPongHandler(func(appData string) error {
		logger.Log.Infof("Received PONG:", appData)
		return nil
	})

	//client發出ping
	//fiber會自動處理ping,故需要SetPingHandler另外接出
	conn.SetPingHandler(func(appData string) error {
		logger.Log.Infof("Received PING:", appData)
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(appData),
			time.Now().Add(time.Second),
		)
	})

	// 定期發送 Ping
	go func() {
		for {
			select {
			case <-ticker.C:
				pingMsg := "ping message"
				if err := conn.WriteMessage(websocket.PingMessage, []byte(pingMsg)); err != nil {
					logger.Log.Errorf("Ping error:", err)
					return
				}
				logger.Log.Infof("%s Ping sent", memberID)
			case <-ctxClose.Done():
				logger.Log.Infof("Ping goroutine cancelled for member:", memberID)
				return
			}
		}
	}()

	for {
		// 1. 讀取前端訊息
		mt, message, err := conn.ReadMessage()
		if err != nil {
			// 檢查是否為 Close 正常結束
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Errorf("Connection closed:", err)
			} else {
				//直接斷線 1006
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
		h.execWebsocketAction(ctx, conn, memberID, admin, &convCancel, mt, message)
	}
}

func (h *ChatWebsocketHandler) execWebsocketAction(ctx context.Context, conn *websocket.Conn, memberID string, admin bool, convCancel *context.CancelFunc, mt int, msg []byte) {
	switch mt {
	case websocket.TextMessage:
		h.textMessageAction(ctx, conn, memberID, admin, convCancel, msg)

	default:
		h.sendError(conn, "unknown action")
	}
}

func (h *ChatWebsocketHandler) textMessageAction(ctx context.Context, conn *websocket.Conn, memberID string, admin bool, convCancel *context.CancelFunc, msg []byte) {

	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		log.Printf("json unmarshal error: %v", err)
		return
	}

	resp := domain.WSResponse{Action: req.Action, Success: false, Payload: map[string]interface{}{}}
	switch req.Action {
	//建立 1對1 conversation
	case string(domain.CreateConversation):
		convID, err := h.convUC.Create(ctx, memberID, req.MemberID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["conversation_id"] = convID
		}

	//把其他 member 加進 conversation
	case string(domain.AddMember):
		err := h.convUC.AddMember(ctx, req.ConversationID, memberID, req.MemberID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
		}

	//離開 conversation
	case string(domain.LeaveConversation):
		err := h.convUC.Leave(ctx, req.ConversationID, memberID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
		}

	//進入 conversation，補歷史訊息並訂閱即時推播
	case string(domain.EnterConversation):
		v := repository.Visibility{MemberID: memberID, Admin: admin}
		history, err := h.convUC.History(ctx, v, req.ConversationID, time.Now(), 50)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["messages"] = history
		}

		// 換房時先取消上一個訂閱，避免 goroutine 殘留
		if *convCancel != nil {
			(*convCancel)()
		}
		ctxEnter, cancel := context.WithCancel(context.Background())
		*convCancel = cancel

		// 啟用sub訂閱 conversation channel
		channel := delivery.ChannelFor(req.ConversationID)
		h.pubSub.Subscribe(ctxEnter, channel, func(resp domain.WSResponse) {
			h.sendResponse(conn, resp)
		})

	//離開 conversation 的即時推播
	case string(domain.ExitConversation):
		if *convCancel != nil {
			(*convCancel)()
			*convCancel = nil
		}
		resp.Success = true
		resp.Payload["exit_conversation"] = req.ConversationID

	//傳送資料
	//message都會寫入db,並經 delivery queue 送給 conversation 內的人
	case string(domain.SendMessage):
		msgID, err := h.messageUC.Execute(ctx, req.ConversationID, memberID, req.Content)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["message_id"] = msgID
		}

	//讀取訊息  將未讀訊息改為已讀
	case string(domain.ReadMessage):
		err := h.messageUC.MarkRead(ctx, req.MessageID, memberID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
		}

	//搜尋所有未讀訊息
	case string(domain.GetUnread):
		msgs, err := h.messageUC.GetCountUnreadMessages(ctx, memberID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			for _, unread := range msgs {
				resp.Payload[unread.ConversationID] = unread.UnreadCount
			}
		}

	default:
		h.sendError(conn, "unknown message types ")
	}

	if resp.Error != "" {
		logger.Log.Error("websocket err ", zap.String("MemberID", memberID), zap.String("Action", req.Action), zap.String("err", resp.Error))
	}
	h.sendResponse(conn, resp)
}

// sendResponse - 發送 JSON 給前端
func (h *ChatWebsocketHandler) sendResponse(conn *websocket.Conn, resp domain.WSResponse) {
	b, _ := json.Marshal(resp)
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		logger.Log.Errorf("write message error:", err)
	}
}

func (h *ChatWebsocketHandler) sendError(conn *websocket.Conn, errorMsg string) {
	resp := domain.WSResponse{
		Action:  "error",
		Success: false,
		Payload: map[string]interface{}{
			"error": errorMsg,
		},
	}
	h.sendResponse(conn, resp)
}
