package server

import (
	"socialmesh/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateUser handles POST /create_user
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	res, err := s.coordinator.CreateUser(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user": res.User,
		"saga": res.Outcome,
	})
}

// CreatePost handles POST /create_post
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req service.CreatePostInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	res, err := s.coordinator.CreatePost(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"post": res.Post,
		"saga": res.Outcome,
	})
}

// LikePost handles POST /like_post
func (s *Server) LikePost(c *fiber.Ctx) error {
	var req struct {
		PostID string `json:"post_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	res, err := s.coordinator.LikePost(c.UserContext(), req.PostID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"status":  "liked",
		"post_id": res.PostID,
		"saga":    res.Outcome,
	})
}

// GetPost handles GET /post/:post_id
func (s *Server) GetPost(c *fiber.Ctx) error {
	view, err := s.coordinator.ReadPost(c.UserContext(), c.Params("post_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// GetPostEvents handles GET /post/:post_id/events?limit=
func (s *Server) GetPostEvents(c *fiber.Ctx) error {
	postID := c.Params("post_id")
	limit := c.QueryInt("limit", service.MaxEvents)

	events, err := s.coordinator.PostEvents(c.UserContext(), postID, limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"post_id": postID,
		"events":  events,
	})
}

// TopTrending handles GET /top_trending
func (s *Server) TopTrending(c *fiber.Ctx) error {
	trending, err := s.coordinator.ReadTrending(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"trending": trending})
}

// GetUserPosts handles GET /user_posts/:user_id
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	posts, err := s.coordinator.ReadUserPosts(c.UserContext(), c.Params("user_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}
