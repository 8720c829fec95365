package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"qna/internal/auth"
	"qna/internal/entity"
	"qna/internal/metrics"
	"qna/internal/repository"
	"qna/internal/session"
	"qna/internal/templates"
)

// QuestionHandler serves the question pages. ViewQuestions is public; the
// router gates every other route behind a logged-in user.
type QuestionHandler struct {
	questions repository.QuestionStore
	render    *Renderer
	log       *slog.Logger
	now       func() time.Time
}

func NewQuestionHandler(questions repository.QuestionStore, render *Renderer, log *slog.Logger) *QuestionHandler {
	return &QuestionHandler{questions: questions, render: render, log: log, now: time.Now}
}

func (h *QuestionHandler) PostQuestionPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, templates.PostQuestion, "Ask a question", nil)
}

func (h *QuestionHandler) PostQuestion(w http.ResponseWriter, r *http.Request) {
	user, err := auth.RequireUser(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	form, err := parseQuestion(r)
	if err != nil {
		h.render.FlashRedirect(w, r, session.FlashError, "Question cannot be empty", "/post-question")
		return
	}

	q := &entity.Question{
		ID:        uuid.NewString(),
		Question:  form.Question,
		User:      user.Username,
		Answers:   []entity.Answer{},
		CreatedAt: h.now().UTC(),
	}
	if err := h.questions.Create(r.Context(), q); err != nil {
		h.render.ServerError(w, r, err)
		return
	}

	metrics.QuestionsPostedTotal.Inc()
	h.log.Info("question posted", "question_id", q.ID, "username", user.Username)
	http.Redirect(w, r, "/view-questions", http.StatusSeeOther)
}

func (h *QuestionHandler) ViewQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.questions.List(r.Context())
	if err != nil {
		h.render.ServerError(w, r, err)
		return
	}
	h.render.Render(w, r, http.StatusOK, templates.ViewQuestions, "Questions", map[string]any{
		"Questions": questions,
	})
}

func (h *QuestionHandler) AnswerQuestionPage(w http.ResponseWriter, r *http.Request) {
	q, err := h.questions.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.render.Fail(w, r, err)
		return
	}
	h.render.Render(w, r, http.StatusOK, templates.AnswerQuestion, "Answer", map[string]any{
		"Question": q,
	})
}

func (h *QuestionHandler) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	user, err := auth.RequireUser(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	id := r.PathValue("id")
	form, err := parseAnswer(r)
	if err != nil {
		h.render.FlashRedirect(w, r, session.FlashError, "Answer cannot be empty", "/answer-question/"+id)
		return
	}

	answer := entity.Answer{
		Text:      form.Answer,
		User:      user.Username,
		CreatedAt: h.now().UTC(),
	}
	if err := h.questions.AddAnswer(r.Context(), id, answer); err != nil {
		h.render.Fail(w, r, err)
		return
	}

	metrics.AnswersPostedTotal.Inc()
	h.log.Info("answer posted", "question_id", id, "username", user.Username)
	http.Redirect(w, r, "/view-questions", http.StatusSeeOther)
}

// Like counts every request; the same user may like a question repeatedly.
func (h *QuestionHandler) Like(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.questions.Like(r.Context(), id); err != nil {
		h.render.Fail(w, r, err)
		return
	}

	metrics.LikesTotal.Inc()
	http.Redirect(w, r, "/view-questions", http.StatusSeeOther)
}
