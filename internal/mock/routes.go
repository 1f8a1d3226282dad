package mock

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stoik/tempmail/internal/models"
)

type mailTMCredentials struct {
	Address  string `json:"address"`
	Password string `json:"password"`
}

type deliverRequest struct {
	Address  string `json:"address" binding:"required"`
	From     string `json:"from"`
	FromName string `json:"fromName"`
	Subject  string `json:"subject"`
	Text     string `json:"text"`
	HTML     string `json:"html"`
}

// NewRouter exposes s over HTTP:
//
//	/mailtm/...            mail.tm REST API
//	/guerrilla/ajax.php    GuerrillaMail ajax API
//	/admin/messages        inject a message into a mailbox
func NewRouter(s *Server, middleware ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware...)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mailboxes": s.MailboxCount()})
	})

	mailtm := r.Group("/mailtm")
	{
		mailtm.GET("/domains", s.handleDomains)
		mailtm.POST("/accounts", s.handleCreateAccount)
		mailtm.POST("/token", s.handleToken)
		mailtm.GET("/messages", s.handleListMessages)
		mailtm.GET("/messages/:id", s.handleGetMessage)
	}

	r.GET("/guerrilla/ajax.php", s.handleGuerrilla)

	admin := r.Group("/admin")
	{
		admin.POST("/messages", s.handleDeliver)
		admin.POST("/messages/generate", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"delivered": s.GenerateMessages()})
		})
	}

	return r
}

// faulted aborts the request when a fault is pending for route.
func (s *Server) faulted(c *gin.Context, route string) bool {
	if status := s.hit(route); status != 0 {
		c.JSON(status, gin.H{"error": fmt.Sprintf("injected failure on %s", route)})
		return true
	}
	return false
}

func (s *Server) handleDomains(c *gin.Context) {
	if s.faulted(c, "mailtm.domains") {
		return
	}
	members := make([]gin.H, 0)
	for i, d := range s.Domains() {
		members = append(members, gin.H{"id": fmt.Sprintf("domain-%d", i), "domain": d, "isActive": true})
	}
	c.JSON(http.StatusOK, gin.H{"hydra:member": members, "hydra:totalItems": len(members)})
}

func (s *Server) handleCreateAccount(c *gin.Context) {
	if s.faulted(c, "mailtm.accounts") {
		return
	}
	var req mailTMCredentials
	if err := c.ShouldBindJSON(&req); err != nil || req.Address == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "address and password are required"})
		return
	}
	mb, err := s.CreateMailTM(req.Address, req.Password)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": mb.ID, "address": mb.Address, "createdAt": mb.CreatedAt})
}

func (s *Server) handleToken(c *gin.Context) {
	if s.faulted(c, "mailtm.token") {
		return
	}
	var req mailTMCredentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid body"})
		return
	}
	mb, err := s.IssueToken(req.Address, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": mb.ID, "token": mb.Token})
}

func (s *Server) bearer(c *gin.Context) (*Mailbox, bool) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	mb, ok := s.ByToken(token)
	if !ok || mb.Provider != models.ProviderMailTM {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "JWT Token not found"})
		return nil, false
	}
	return mb, true
}

func mailTMItem(mb *Mailbox, m Message) gin.H {
	intro := m.Text
	if len(intro) > 100 {
		intro = intro[:100]
	}
	return gin.H{
		"id":             m.ID,
		"from":           gin.H{"address": m.From, "name": m.FromName},
		"to":             []gin.H{{"address": mb.Address, "name": ""}},
		"subject":        m.Subject,
		"intro":          intro,
		"seen":           m.Seen,
		"hasAttachments": false,
		"createdAt":      m.CreatedAt.UTC().Format("2006-01-02T15:04:05+00:00"),
	}
}

func (s *Server) handleListMessages(c *gin.Context) {
	if s.faulted(c, "mailtm.messages") {
		return
	}
	mb, ok := s.bearer(c)
	if !ok {
		return
	}
	members := make([]gin.H, 0)
	for _, m := range s.Messages(mb) {
		members = append(members, mailTMItem(mb, m))
	}
	c.JSON(http.StatusOK, gin.H{"hydra:member": members, "hydra:totalItems": len(members)})
}

func (s *Server) handleGetMessage(c *gin.Context) {
	if s.faulted(c, "mailtm.message") {
		return
	}
	mb, ok := s.bearer(c)
	if !ok {
		return
	}
	m, found := s.Open(mb, c.Param("id"), false)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
		return
	}
	item := mailTMItem(mb, m)
	item["text"] = m.Text
	html := []string{}
	if m.HTML != "" {
		html = append(html, m.HTML)
	}
	item["html"] = html
	c.JSON(http.StatusOK, item)
}

func guerrillaItem(m Message, withBody bool) gin.H {
	read := "0"
	if m.Seen {
		read = "1"
	}
	excerpt := m.Text
	if len(excerpt) > 60 {
		excerpt = excerpt[:60]
	}
	item := gin.H{
		"mail_id":        m.Seq,
		"mail_from":      m.From,
		"mail_subject":   m.Subject,
		"mail_excerpt":   excerpt,
		"mail_timestamp": fmt.Sprintf("%d", m.CreatedAt.Unix()),
		"mail_read":      read,
		"mail_date":      m.CreatedAt.UTC().Format("15:04:05"),
	}
	if withBody {
		body := m.HTML
		if body == "" {
			body = m.Text
		}
		item["mail_body"] = body
	}
	return item
}

func (s *Server) handleGuerrilla(c *gin.Context) {
	f := c.Query("f")
	if s.faulted(c, "guerrilla."+f) {
		return
	}

	switch f {
	case "get_email_address":
		mb := s.CreateGuerrilla()
		c.JSON(http.StatusOK, gin.H{
			"email_addr":      mb.Address,
			"email_timestamp": mb.CreatedAt.Unix(),
			"alias":           strings.SplitN(mb.Address, "@", 2)[0],
			"sid_token":       mb.Token,
		})
	case "get_email_list", "check_email":
		mb, ok := s.ByToken(c.Query("sid_token"))
		if !ok {
			c.JSON(http.StatusOK, gin.H{"list": []gin.H{}, "count": "0"})
			return
		}
		list := make([]gin.H, 0)
		for _, m := range s.Messages(mb) {
			list = append(list, guerrillaItem(m, false))
		}
		c.JSON(http.StatusOK, gin.H{"list": list, "count": fmt.Sprintf("%d", len(list)), "email": mb.Address})
	case "fetch_email":
		mb, ok := s.ByToken(c.Query("sid_token"))
		if !ok {
			c.JSON(http.StatusOK, false)
			return
		}
		var found *Message
		for _, m := range s.Messages(mb) {
			if fmt.Sprintf("%d", m.Seq) == c.Query("email_id") {
				mm := m
				found = &mm
				break
			}
		}
		if found == nil {
			c.JSON(http.StatusOK, false)
			return
		}
		s.Open(mb, found.ID, true)
		c.JSON(http.StatusOK, guerrillaItem(*found, true))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown function"})
	}
}

func (s *Server) handleDeliver(c *gin.Context) {
	var req deliverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.From == "" {
		req.From = senders[0]
	}
	id, err := s.Deliver(req.Address, Message{
		From:     req.From,
		FromName: req.FromName,
		Subject:  req.Subject,
		Text:     req.Text,
		HTML:     req.HTML,
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "message": fmt.Sprintf("Delivered message %s to %s", id, req.Address)})
}
