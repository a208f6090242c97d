package homies

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oggyb/homies/internal/app"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "homies.v1.HomiesService"

// HomiesServer is the gRPC surface. Every method takes and returns a
// google.protobuf.Struct.
type HomiesServer interface {
	AddFavorite(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveFavorite(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Block(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveMatched(context.Context, *structpb.Struct) (*structpb.Struct, error)
	NextCandidate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListLinked(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CountAdmirers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetHomie(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SendMessage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MarkRead(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type handlerFunc func(HomiesServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call handlerFunc) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(HomiesServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(HomiesServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes HomiesService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HomiesServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("AddFavorite", HomiesServer.AddFavorite),
		unary("RemoveFavorite", HomiesServer.RemoveFavorite),
		unary("Block", HomiesServer.Block),
		unary("RemoveMatched", HomiesServer.RemoveMatched),
		unary("NextCandidate", HomiesServer.NextCandidate),
		unary("ListLinked", HomiesServer.ListLinked),
		unary("CountAdmirers", HomiesServer.CountAdmirers),
		unary("GetHomie", HomiesServer.GetHomie),
		unary("SendMessage", HomiesServer.SendMessage),
		unary("MarkRead", HomiesServer.MarkRead),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "homies/v1/homies.proto",
}

// Registrar ties the Homies service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Homies service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Homies service implementation to the gRPC server
func (r *Registrar) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(&ServiceDesc, NewAPI(NewHomiesService(r.appCtx)))
}
