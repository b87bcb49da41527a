package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/laundry-service/internal/apperr"
	"github.com/laundry-service/internal/logger"
	"github.com/laundry-service/internal/model"
	"github.com/laundry-service/internal/service"
	"github.com/laundry-service/internal/workflow"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type WorkflowService interface {
	GetOrderDetail(ctx context.Context, storeID, id string) (*service.OrderDetail, error)
	GetActions(ctx context.Context, storeID, id string) (workflow.ActionSet, error)
	UpdateStatus(ctx context.Context, storeID, id string, req service.StatusRequest) (*model.Order, error)
	SendToWorkshop(ctx context.Context, storeID, id string, req service.WorkshopRequest) (*model.Order, error)
	ReturnFromWorkshop(ctx context.Context, storeID, id string, req service.WorkshopReturnRequest) (*model.Order, error)
}

type TokenParser interface {
	ParseToken(token string) (*service.Claims, error)
}

type Server struct {
	orders WorkflowService
	auth   TokenParser
	log    *zap.Logger
}

func NewServer(orders WorkflowService, auth TokenParser, log *zap.Logger) *Server {
	return &Server{orders: orders, auth: auth, log: log}
}

func (s *Server) GetOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ctx, log, claims, err := s.setupContext(ctx)
	if err != nil {
		return nil, err
	}
	id, err := requiredString(req, "id")
	if err != nil {
		return nil, err
	}

	detail, err := s.orders.GetOrderDetail(ctx, claims.StoreID, id)
	if err != nil {
		return nil, toStatus(log, "get order", err)
	}
	return toStruct(detail)
}

func (s *Server) ListActions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ctx, log, claims, err := s.setupContext(ctx)
	if err != nil {
		return nil, err
	}
	id, err := requiredString(req, "id")
	if err != nil {
		return nil, err
	}

	actions, err := s.orders.GetActions(ctx, claims.StoreID, id)
	if err != nil {
		return nil, toStatus(log, "list actions", err)
	}
	return toStruct(actions)
}

// UpdateStatus routes workshop targets to the workshop operations and every
// other target to the plain status transition.
func (s *Server) UpdateStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ctx, log, claims, err := s.setupContext(ctx)
	if err != nil {
		return nil, err
	}
	id, err := requiredString(req, "id")
	if err != nil {
		return nil, err
	}
	to, err := requiredString(req, "to")
	if err != nil {
		return nil, err
	}
	fields := req.GetFields()

	var order *model.Order
	switch target := model.OrderStatus(to); target {
	case model.StatusAtWorkshop:
		order, err = s.orders.SendToWorkshop(ctx, claims.StoreID, id, service.WorkshopRequest{
			ItemIDs:     stringList(fields["itemIds"]),
			PartnerName: fields["partnerName"].GetStringValue(),
			Notes:       fields["notes"].GetStringValue(),
		})
	case model.StatusWorkshopReturned:
		order, err = s.orders.ReturnFromWorkshop(ctx, claims.StoreID, id, service.WorkshopReturnRequest{
			ItemIDs: stringList(fields["itemIds"]),
		})
	default:
		order, err = s.orders.UpdateStatus(ctx, claims.StoreID, id, service.StatusRequest{
			Status: target,
			Notes:  fields["notes"].GetStringValue(),
			Reason: fields["reason"].GetStringValue(),
		})
	}
	if err != nil {
		return nil, toStatus(log, "update status", err)
	}

	log.Info("order status updated via gRPC", zap.String("order_id", order.ID), zap.String("status", string(order.Status)))
	return toStruct(order)
}

func (s *Server) setupContext(ctx context.Context) (context.Context, *zap.Logger, *service.Claims, error) {
	md, _ := metadata.FromIncomingContext(ctx)

	requestID := first(md, "x-request-id")
	if requestID == "" {
		requestID = uuid.New().String()
	}
	log := s.log.With(zap.String("request_id", requestID))

	claims, err := s.auth.ParseToken(bearer(first(md, "authorization")))
	if err != nil {
		return ctx, log, nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	log = log.With(zap.String("store_id", claims.StoreID), zap.String("user_id", claims.Subject))
	return logger.WithContext(ctx, log), log, claims, nil
}

func first(md metadata.MD, key string) string {
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

func bearer(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func requiredString(req *structpb.Struct, key string) (string, error) {
	v := strings.TrimSpace(req.GetFields()[key].GetStringValue())
	if v == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", key)
	}
	return v, nil
}

func stringList(v *structpb.Value) []string {
	var out []string
	for _, item := range v.GetListValue().GetValues() {
		if s := item.GetStringValue(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// toStruct converts any JSON-encodable value into a protobuf Struct.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}

func toStatus(log *zap.Logger, op string, err error) error {
	if t, ok := apperr.AsTransition(err); ok {
		return status.Errorf(codes.FailedPrecondition, "%s: %s", t.Reason, t.Error())
	}
	switch {
	case apperr.IsValidation(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		return status.Error(codes.NotFound, "order not found")
	case errors.Is(err, apperr.ErrConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, apperr.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, apperr.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	}
	log.Error("failed to "+op, zap.Error(err))
	return status.Error(codes.Internal, fmt.Sprintf("failed to %s", op))
}
