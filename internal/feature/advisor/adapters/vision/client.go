// Package vision はGoogle Cloud Vision APIを使用した画像の文字・ラベル抽出クライアントを提供します。
package vision

import (
	"context"
	"fmt"
	"strings"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"trade_advisor/internal/feature/advisor/usecase"
)

const (
	// maxLabels は要約に含めるラベル数です。
	maxLabels = 5
	// minLabelScore はこれ未満のラベルを捨てます。
	minLabelScore = 0.6
)

// VisionDescriber はGoogle Cloud Vision APIで画像内の文字とラベルを抽出します。
type VisionDescriber struct {
	client *gvision.ImageAnnotatorClient
}

// VisionDescriberがImageDescriberを実装していることをコンパイル時に検証します。
var _ usecase.ImageDescriber = (*VisionDescriber)(nil)

// NewVisionDescriber はADCを使用してVisionDescriberの新しいインスタンスを生成します。
func NewVisionDescriber(ctx context.Context) (*VisionDescriber, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &VisionDescriber{client: client}, nil
}

// Close はVision APIクライアントを解放します。
func (v *VisionDescriber) Close() error {
	return v.client.Close()
}

// Describe は画像バイト列から文字（OCR）とラベルを抽出し、プロンプトに追記できる文字列にします。
func (v *VisionDescriber) Describe(ctx context.Context, img []byte) (string, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: img},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_TEXT_DETECTION},
					{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: maxLabels},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision API request failed: %w", err)
	}
	if len(resp.Responses) == 0 {
		return "", nil
	}
	if resp.Responses[0].Error != nil {
		return "", fmt.Errorf("vision API error: %s", resp.Responses[0].Error.Message)
	}
	return summarize(resp.Responses[0]), nil
}

// summarize はアノテーション結果を "Text:" と "Labels:" の行にまとめます。
func summarize(r *visionpb.AnnotateImageResponse) string {
	var lines []string

	// 先頭の TextAnnotation は画像全体の文字列
	if len(r.TextAnnotations) > 0 {
		if text := strings.TrimSpace(r.TextAnnotations[0].Description); text != "" {
			lines = append(lines, "Text: "+strings.Join(strings.Fields(text), " "))
		}
	}

	labels := make([]string, 0, maxLabels)
	for _, l := range r.LabelAnnotations {
		if l.Score < minLabelScore || len(labels) == maxLabels {
			continue
		}
		labels = append(labels, l.Description)
	}
	if len(labels) > 0 {
		lines = append(lines, "Labels: "+strings.Join(labels, ", "))
	}
	return strings.Join(lines, "\n")
}
