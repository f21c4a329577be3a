package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"mdr-travel/go_backend/internal/app/config"
	"mdr-travel/go_backend/internal/app/http/handlers"
	"mdr-travel/go_backend/internal/app/http/middleware"
	"mdr-travel/go_backend/internal/logger"
	"mdr-travel/go_backend/internal/service"
)

func NewRouter(cfg config.Config, svc *service.Service, log *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging(log))
	r.Use(middleware.CORS(cfg.CORSAllowOrigin))

	h := handlers.New(svc, log)
	aiLimit := middleware.NewIPRateLimiter(cfg.AIRatePerMinute, log)

	r.Get("/health", h.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.InternalAuth(cfg.InternalToken))

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", h.ListQuotes)
			r.Post("/", h.CreateQuote)
			r.Post("/compare", h.CompareQuotes)
			r.Get("/expirations", h.Expirations)
			r.Get("/templates/{type}", h.QuoteTemplate)
			r.With(aiLimit.Handler).Post("/ai", h.GenerateAIQuote)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetQuote)
				r.Put("/", h.UpdateQuote)
				r.Delete("/", h.DeleteQuote)
				r.Post("/status", h.UpdateQuoteStatus)
				r.Post("/duplicate", h.DuplicateQuote)
				r.Get("/versions", h.QuoteHistory)
				r.Post("/versions", h.CreateQuoteVersion)
				r.Post("/discount", h.ApplyDiscount)
				r.Post("/clauses", h.AddClause)
				r.Post("/signature", h.RequestSignature)
				r.Get("/pdf", h.QuotePDF)
				r.Post("/email", h.EmailQuote)
				r.Get("/whatsapp", h.QuoteWhatsApp)
				r.Post("/whatsapp/send", h.SendQuoteWhatsApp)
			})
		})
		r.Get("/currency/convert", h.ConvertCurrency)

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.ListClients)
			r.Post("/", h.CreateClient)
			r.Get("/tags", h.ClientTags)
			r.Get("/stats", h.ClientStats)
			r.Get("/export.csv", h.ExportClientsCSV)
			r.Get("/export.xlsx", h.ExportClientsXLSX)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetClient)
				r.Put("/", h.UpdateClient)
				r.Delete("/", h.DeleteClient)
				r.Post("/timeline", h.AddTimelineEvent)
				r.Post("/tags/{tag}", h.AddTag)
				r.Delete("/tags/{tag}", h.RemoveTag)
				r.Get("/quotes", h.ClientQuotes)
			})
		})

		r.Route("/pipeline", func(r chi.Router) {
			r.Get("/", h.Board)
			r.Get("/stats", h.PipelineStats)
			r.Get("/conversion", h.PipelineConversion)
			r.Get("/closures", h.ProjectedClosures)
			r.Get("/goal", h.GetGoal)
			r.Put("/goal", h.SetGoal)
			r.Post("/{id}/move", h.MoveQuote)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/dashboard", h.Dashboard)
			r.Get("/commissions", h.Commissions)
			r.Get("/projection", h.Projection)
			r.Get("/report", h.Report)
			r.Get("/compare-years", h.CompareYears)
			r.Get("/time-to-close", h.TimeToClose)
			r.Get("/satisfaction", h.Satisfaction)
			r.Get("/lead-sources", h.LeadSources)
			r.Get("/top-destinations", h.TopDestinations)
		})

		r.Route("/messages", func(r chi.Router) {
			r.Post("/fill", h.FillMessage)
			r.Get("/followups", h.FollowUps)
			r.Post("/expand", h.ExpandShortcut)
			r.Post("/auto-response", h.AutoResponse)
			r.Get("/scheduled", h.ScheduledMessages)
			r.Post("/scheduled", h.ScheduleMessage)
		})

		r.Get("/config", h.GetConfig)
		r.Put("/config", h.SaveConfig)
		r.Put("/config/dark-mode", h.SetDarkMode)
		r.Get("/branding", h.Branding)
		r.Put("/branding", h.SaveBranding)
		r.Get("/language", h.Language)
		r.Put("/language", h.SetLanguage)
		r.Get("/favorites", h.Favorites)
		r.Post("/favorites/{id}", h.ToggleFavorite)
		r.Get("/recents", h.Recents)
		r.Get("/checklist", h.Checklist)
		r.Put("/checklist", h.SaveChecklist)
		r.Get("/stats", h.Stats)
		r.Get("/onboarding", h.Onboarding)
		r.Post("/onboarding", h.CompleteOnboarding)
		r.Get("/theme", h.Theme)
		r.Put("/theme", h.SetTheme)
		r.Get("/last-tab", h.LastTab)
		r.Put("/last-tab", h.SetLastTab)
		r.Get("/votes/{id}", h.VoteStatus)
		r.Post("/votes/{id}", h.ToggleVote)
		r.Get("/reminders", h.Reminders)
		r.Post("/reminders", h.AddReminder)
		r.Delete("/reminders/{index}", h.DeleteReminder)

		r.Route("/backup", func(r chi.Router) {
			r.Get("/export", h.ExportBackup)
			r.Post("/import", h.ImportBackup)
			r.Post("/snapshot", h.SnapshotBackup)
			r.Delete("/", h.ClearData)
			r.Get("/usage", h.Usage)
		})
	})

	return r
}
