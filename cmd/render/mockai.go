package main

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	"resume-builder/internal/enhance"
	"resume-builder/pkg/ai"
)

// newMockAICmd serves the chat endpoint the remote enhancer calls, answering
// with the heuristic enhancer. Point enhancer.remote.url at it to exercise
// the remote path locally.
func newMockAICmd(root *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "mock-ai",
		Short: "Serve a stand-in ai-service chat endpoint backed by the heuristic enhancer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vocab, err := enhance.LoadVocabulary(root.cfg.Enhancer.VocabularyFile)
			if err != nil {
				return err
			}
			app := mockAIApp(enhance.NewHeuristic(vocab))
			go func() {
				<-cmd.Context().Done()
				_ = app.Shutdown()
			}()
			root.logger.Info("mock ai-service listening", "addr", addr)
			return app.Listen(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8001", "listen address")
	return cmd
}

type chatMessage struct {
	Agent  string `json:"agent,omitempty"`
	Input  string `json:"input,omitempty"`
	Output string `json:"output,omitempty"`
}

func mockAIApp(h *enhance.Heuristic) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Post("/v1/chat", func(c *fiber.Ctx) error {
		var in chatMessage
		if err := c.BodyParser(&in); err != nil || in.Input == "" {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		req, err := ai.ParsePrompt(in.Input)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		s, err := h.Enhance(c.UserContext(), req)
		if err != nil {
			return err
		}
		out, err := json.Marshal(s)
		if err != nil {
			return err
		}
		return c.JSON(chatMessage{Agent: "mock", Output: string(out)})
	})
	return app
}
