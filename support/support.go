package support

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"wiper-backend/session"

	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

const systemPrompt = "You are the in-app support assistant for Wiper, a doorstep car-cleaning " +
	"service. Answer questions about cleaning schedules, plans (Hatchback, Sedan, SUV, Premium), " +
	"payments and the mobile app. Keep answers short and friendly. If the user reports a missed " +
	"cleaning or a billing dispute, tell them a human agent will follow up."

// Assistant answers a support question. Satisfied by the OpenAI client;
// tests plug in a canned implementation.
type Assistant interface {
	Reply(ctx context.Context, question string) (string, error)
}

type openAIAssistant struct {
	client *openai.Client
	model  string
}

// NewAssistantFromEnv builds the OpenAI-backed assistant, or nil when
// OPENAI_API_KEY is not set so the route can degrade gracefully.
func NewAssistantFromEnv() Assistant {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		log.Warn("[SUPPORT] OPENAI_API_KEY not set; support chat disabled")
		return nil
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = openai.GPT4oMini
	}
	return &openAIAssistant{client: openai.NewClient(key), model: model}
}

func (a *openAIAssistant) Reply(ctx context.Context, question string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

type Handler struct {
	assistant Assistant
}

func NewHandler(assistant Assistant) *Handler {
	return &Handler{assistant: assistant}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/support/chat", h.chat)
}

type chatPayload struct {
	Message string `json:"message"`
}

func (h *Handler) chat(c *gin.Context) {
	account, ok := session.AccountFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session required"})
		return
	}
	var p chatPayload
	if err := c.ShouldBindJSON(&p); err != nil || strings.TrimSpace(p.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}
	if h.assistant == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Support chat is not available right now"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()
	answer, err := h.assistant.Reply(ctx, strings.TrimSpace(p.Message))
	if err != nil {
		log.WithError(err).WithField("account_id", account.ID).Error("[SUPPORT] assistant call failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not reach support right now"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"reply": answer}})
}
