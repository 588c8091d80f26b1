package http

import (
	"errors"
	"net/http"

	"informe/internal/core"
	applog "informe/internal/log"
	"informe/internal/report"
)

// handleSaveRecord merges the posted fields into the day's form and saves
// it. It answers with a small status fragment and raises record:saved so
// the dashboard refreshes.
func (s *Server) handleSaveRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}

	date, err := parseDateParam(p.Values(), s.service.Today())
	if err != nil {
		BadRequestError("Data inválida").Write(w)
		return
	}
	if _, sent := p.DailyForm(); !sent {
		BadRequestError("Nenhum campo enviado").Write(w)
		return
	}
	form, _, err := s.service.FormFor(ctx, date)
	if err != nil {
		requestLogger(r).ErrorContext(ctx, "Failed to load record",
			applog.FieldDate, date.Key(), applog.FieldError, err)
		InternalServerError("Erro ao carregar o registro").Write(w)
		return
	}
	p.ApplyDailyForm(&form)

	version, err := s.service.SaveForm(ctx, date, form)
	switch {
	case errors.Is(err, core.ErrFutureDate):
		UnprocessableEntityError("Não é possível salvar um dia futuro").Write(w)
		return
	case errors.Is(err, core.ErrInvalidDate):
		BadRequestError("Data inválida").Write(w)
		return
	case err != nil:
		requestLogger(r).ErrorContext(ctx, "Failed to save record",
			applog.FieldDate, date.Key(), applog.FieldError, err)
		NewHTMXResponse().
			Status(http.StatusInternalServerError).
			TriggerErrorNotification("Erro ao salvar. Tente novamente.").
			BodyHTML(`<span class="save-status error">Erro ao salvar</span>`).
			Write(w)
		return
	}

	s.appMetrics.recordsSaved.Add(1)
	NewHTMXResponse().
		TriggerRecordSaved(date, version).
		BodyHTML(`<span class="save-status ok">Salvo ` + date.BR() + `</span>`).
		Write(w)
}

type reportFragment struct {
	Date     core.Date
	Text     string
	ImageURL string
	Filename string
}

// handleGenerateReport validates the day's record and renders the report.
// Form fields sent along are saved first so the latest edit is included.
func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}
	date, err := parseDateParam(p.Values(), s.service.Today())
	if err != nil {
		BadRequestError("Data inválida").Write(w)
		return
	}

	if _, sent := p.DailyForm(); sent {
		form, _, err := s.service.FormFor(ctx, date)
		if err == nil {
			p.ApplyDailyForm(&form)
			_, err = s.service.SaveForm(ctx, date, form)
		}
		if err != nil {
			if errors.Is(err, core.ErrFutureDate) {
				UnprocessableEntityError("Não é possível gerar informe de um dia futuro").Write(w)
				return
			}
			requestLogger(r).ErrorContext(ctx, "Failed to save record before report",
				applog.FieldDate, date.Key(), applog.FieldError, err)
			InternalServerError("Erro ao salvar o registro").Write(w)
			return
		}
	}

	text, err := s.service.GenerateReport(ctx, date)
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		s.appMetrics.reportsRejected.Add(1)
		ValidationErrorResponse(verr).Write(w)
		return
	}
	if err != nil {
		requestLogger(r).ErrorContext(ctx, "Failed to generate report",
			applog.FieldDate, date.Key(), applog.FieldError, err)
		InternalServerError("Erro ao gerar o informe").Write(w)
		return
	}

	html, err := s.renderFragment("report.html", reportFragment{
		Date:     date,
		Text:     text,
		ImageURL: "/report.png?date=" + date.Key(),
		Filename: report.ImageFilename(date),
	})
	if err != nil {
		requestLogger(r).ErrorContext(ctx, "Failed to render report fragment", applog.FieldError, err)
		InternalServerError("Erro ao exibir o informe").Write(w)
		return
	}

	s.appMetrics.reportsGenerated.Add(1)
	NewHTMXResponse().
		TriggerReportGenerated(date).
		BodyHTML(html).
		Write(w)
}

// handleReportImage serves the report card as a PNG download.
func (s *Server) handleReportImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	date, err := parseDateParam(r.URL.Query(), s.service.Today())
	if err != nil {
		BadRequestError("Data inválida").Write(w)
		return
	}

	b, err := s.service.ReportImage(ctx, date)
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		ValidationErrorResponse(verr).Write(w)
		return
	}
	if err != nil {
		requestLogger(r).ErrorContext(ctx, "Failed to render report image",
			applog.FieldDate, date.Key(), applog.FieldError, err)
		InternalServerError("Erro ao gerar a imagem").Write(w)
		return
	}

	s.appMetrics.imagesExported.Add(1)
	writePNG(w, b, report.ImageFilename(date))
}
