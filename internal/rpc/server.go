package rpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"clinic-api/internal/auth"
	"clinic-api/internal/clock"
	"clinic-api/internal/middleware"
	"clinic-api/internal/model"
	"clinic-api/internal/schedule"
)

// Server exposes the same operations as the HTTP API over gRPC.
type Server struct {
	auth     *auth.Service
	schedule *schedule.Service
}

var _ ClinicServer = (*Server)(nil)

func NewServer(as *auth.Service, ss *schedule.Service) *Server {
	return &Server{auth: as, schedule: ss}
}

func str(in *structpb.Struct, key string) string {
	return in.GetFields()[key].GetStringValue()
}

func token(ctx context.Context) string {
	md, _ := metadata.FromIncomingContext(ctx)
	if v := md.Get(middleware.SessionCookie); len(v) > 0 {
		return v[0]
	}
	return ""
}

func (s *Server) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	u, tok, err := s.auth.Login(ctx, str(in, "email"), str(in, "password"))
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	_ = grpc.SetHeader(ctx, metadata.Pairs(middleware.SessionCookie, tok))
	return reply(ctx, map[string]any{"user": userFields(u), "token": tok})
}

func (s *Server) Logout(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if err := s.auth.Logout(ctx, token(ctx)); err != nil {
		return nil, toStatus(ctx, err)
	}
	return reply(ctx, map[string]any{"message": "logged out"})
}

func (s *Server) Me(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	u, ok := middleware.IdentityFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "not authenticated")
	}
	return reply(ctx, map[string]any{"user": userFields(u)})
}

func (s *Server) ChangePassword(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	u, _ := middleware.IdentityFrom(ctx)
	err := s.auth.ChangePassword(ctx, u, str(in, "currentPassword"), str(in, "newPassword"), str(in, "confirmPassword"))
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return reply(ctx, map[string]any{"message": "password updated"})
}

func (s *Server) ListAppointments(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	u, _ := middleware.IdentityFrom(ctx)
	if err := auth.RequireDoctorOrAssistant(u); err != nil {
		return nil, toStatus(ctx, err)
	}
	apts, err := s.schedule.ListDay(ctx, str(in, "date"))
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	list := make([]any, 0, len(apts))
	for i := range apts {
		list = append(list, appointmentFields(&apts[i]))
	}
	return reply(ctx, map[string]any{"appointments": list})
}

func (s *Server) CreateAppointment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	u, _ := middleware.IdentityFrom(ctx)
	if err := auth.RequireDoctorOrAssistant(u); err != nil {
		return nil, toStatus(ctx, err)
	}
	apt, err := s.schedule.Create(ctx, u, schedule.NewAppointment{
		PatientID: str(in, "patientId"),
		Date:      str(in, "date"),
		Time:      str(in, "time"),
		ISO:       str(in, "scheduledAt"),
		Reason:    str(in, "reason"),
		Notes:     str(in, "notes"),
	})
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return reply(ctx, map[string]any{"appointment": appointmentFields(apt)})
}

func reply(ctx context.Context, fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		slog.ErrorContext(ctx, "encode reply", slog.String("error", err.Error()))
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

func userFields(u *model.Identity) map[string]any {
	m := map[string]any{
		"id":    u.ID,
		"email": u.Email,
		"name":  u.Name,
		"role":  string(u.Role),
	}
	if u.Specialty != "" {
		m["specialty"] = u.Specialty
	}
	return m
}

func appointmentFields(a *model.Appointment) map[string]any {
	m := map[string]any{
		"id":          a.ID,
		"scheduledAt": a.ScheduledAt.In(clock.Location).Format(time.RFC3339),
		"date":        clock.DateString(a.ScheduledAt),
		"time":        clock.TimeString(a.ScheduledAt),
		"patientId":   a.PatientID,
		"doctorId":    a.DoctorID,
		"reason":      a.Reason,
		"notes":       a.Notes,
		"status":      string(a.Status),
		"createdBy":   a.CreatedBy,
	}
	if p := a.Patient; p != nil {
		m["patient"] = map[string]any{"id": p.ID, "firstName": p.FirstName, "lastName": p.LastName}
	}
	return m
}

func toStatus(ctx context.Context, err error) error {
	var (
		ve *model.ValidationError
		fe *model.ForbiddenError
	)
	switch {
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, ve.Msg)
	case errors.Is(err, model.ErrValidation):
		return status.Error(codes.InvalidArgument, "invalid request")
	case errors.Is(err, model.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, "invalid credentials")
	case errors.Is(err, model.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, "not authenticated")
	case errors.As(err, &fe):
		return status.Error(codes.PermissionDenied, fe.Error())
	case errors.Is(err, model.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, model.ErrNoAttendingAvailable):
		return status.Error(codes.FailedPrecondition, "no doctor available")
	default:
		slog.ErrorContext(ctx, "rpc failed", slog.String("error", err.Error()))
		return status.Error(codes.Internal, "internal error")
	}
}
