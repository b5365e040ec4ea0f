package service

import (
	"context"

	v1 "CourseLane/api/v1"
	"CourseLane/internal/biz"
)

// MaterialService implements v1.MaterialServiceHTTPServer.
type MaterialService struct {
	materials *biz.MaterialUsecase
}

// NewMaterialService 创建 MaterialService 实例
func NewMaterialService(materials *biz.MaterialUsecase) *MaterialService {
	return &MaterialService{materials: materials}
}

// ListMaterials 返回课程资料（仅限已报名用户）
func (s *MaterialService) ListMaterials(ctx context.Context, req *v1.ListMaterialsRequest) (*v1.ListMaterialsReply, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	materials, err := s.materials.ListMaterials(ctx, p, req.CourseID)
	if err != nil {
		return nil, err
	}

	reply := &v1.ListMaterialsReply{Materials: make([]*v1.Material, 0, len(materials))}
	for _, m := range materials {
		reply.Materials = append(reply.Materials, &v1.Material{
			ID:       m.ID,
			CourseID: m.CourseID,
			Title:    m.Title,
			URL:      m.URL,
			Position: m.Position,
		})
	}
	return reply, nil
}
