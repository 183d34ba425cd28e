package rank

import (
	"math"
	"time"

	"github.com/rushteam/feedkit/core"
)

// 外部信号的约定 key。个性化管线可以通过缓存行的 ranking_signals
// 或在线信号源注入这些值，引擎不关心它们怎么算出来。
const (
	// SignalEngagementScore 外部预计算的互动分：存在时整体覆盖引擎自算值
	SignalEngagementScore = "engagement_score"

	// SignalPersonalBoost / SignalPersonalization 个性化加成（两种拼写都接受，前者优先）
	SignalPersonalBoost   = "personal_boost"
	SignalPersonalization = "personalization"

	// SignalPersonaAffinity 人设亲和度
	SignalPersonaAffinity = "persona_affinity"

	// SignalDiversityPenalty 多样性惩罚（只会把个性化分量压到 0，不会压成负数）
	SignalDiversityPenalty = "diversity_penalty"
)

// Config 是打分函数的全部可调参数。权重与半衰期是配置常量而不是魔法数；
// 零值字段在 NewScorer 里回落到默认值。
type Config struct {
	// 互动计数的加权系数
	LikeWeight     float64 `yaml:"like_weight"`
	FavoriteWeight float64 `yaml:"favorite_weight"`
	ShareWeight    float64 `yaml:"share_weight"`
	CommentWeight  float64 `yaml:"comment_weight"`
	RemakeWeight   float64 `yaml:"remake_weight"`
	OrderWeight    float64 `yaml:"order_weight"`

	// 三个分量的合成权重
	EngagementWeight      float64 `yaml:"engagement_weight"`
	RecencyWeight         float64 `yaml:"recency_weight"`
	PersonalizationWeight float64 `yaml:"personalization_weight"`

	// RecencyHalfLifeHours 时效衰减常数（小时），默认 48
	RecencyHalfLifeHours float64 `yaml:"recency_half_life_hours"`
}

// DefaultConfig 返回默认打分参数。
func DefaultConfig() Config {
	return Config{
		LikeWeight:            1,
		FavoriteWeight:        1.2,
		ShareWeight:           1.6,
		CommentWeight:         1.3,
		RemakeWeight:          2.2,
		OrderWeight:           2.8,
		EngagementWeight:      0.55,
		RecencyWeight:         0.30,
		PersonalizationWeight: 0.15,
		RecencyHalfLifeHours:  48,
	}
}

// Scorer 是纯打分函数：无 I/O、无共享状态，相同输入 + 相同 now
// 必得相同输出，可以被任意多个 goroutine 并发调用。
type Scorer struct {
	Config Config
}

// NewScorer 构造 Scorer；cfg 的零值字段回落到 DefaultConfig。
func NewScorer(cfg Config) *Scorer {
	def := DefaultConfig()
	if cfg.LikeWeight == 0 {
		cfg.LikeWeight = def.LikeWeight
	}
	if cfg.FavoriteWeight == 0 {
		cfg.FavoriteWeight = def.FavoriteWeight
	}
	if cfg.ShareWeight == 0 {
		cfg.ShareWeight = def.ShareWeight
	}
	if cfg.CommentWeight == 0 {
		cfg.CommentWeight = def.CommentWeight
	}
	if cfg.RemakeWeight == 0 {
		cfg.RemakeWeight = def.RemakeWeight
	}
	if cfg.OrderWeight == 0 {
		cfg.OrderWeight = def.OrderWeight
	}
	if cfg.EngagementWeight == 0 {
		cfg.EngagementWeight = def.EngagementWeight
	}
	if cfg.RecencyWeight == 0 {
		cfg.RecencyWeight = def.RecencyWeight
	}
	if cfg.PersonalizationWeight == 0 {
		cfg.PersonalizationWeight = def.PersonalizationWeight
	}
	if cfg.RecencyHalfLifeHours == 0 {
		cfg.RecencyHalfLifeHours = def.RecencyHalfLifeHours
	}
	return &Scorer{Config: cfg}
}

// Score 计算单个实体的相关性分。
//   - 互动分量：加权求和后 log10(sum+1) 压缩长尾，下限 0；
//     signals 里给了 engagement_score 则整体覆盖
//   - 时效分量：exp(-ageHours/halfLife)；created_at 解析失败记 0，不报错
//   - 个性化分量：max(0, boost + affinity - penalty)
func (s *Scorer) Score(entity *core.ContentEntity, signals map[string]float64, now time.Time) core.RankingResult {
	engagement := s.engagement(entity, signals)
	recency := s.recency(entity, now)
	personalization := s.personalization(signals)

	out := make(map[string]float64, len(signals))
	for k, v := range signals {
		out[k] = v
	}

	return core.RankingResult{
		Score: s.Config.EngagementWeight*engagement +
			s.Config.RecencyWeight*recency +
			s.Config.PersonalizationWeight*personalization,
		Breakdown: core.RankingBreakdown{
			Engagement:      engagement,
			Recency:         recency,
			Personalization: personalization,
		},
		Signals: out,
	}
}

func (s *Scorer) engagement(entity *core.ContentEntity, signals map[string]float64) float64 {
	if v, ok := signals[SignalEngagementScore]; ok {
		return v
	}
	if entity == nil {
		return 0
	}
	sum := float64(entity.LikeCount)*s.Config.LikeWeight +
		float64(entity.FavoriteCount)*s.Config.FavoriteWeight +
		float64(entity.ShareCount)*s.Config.ShareWeight +
		float64(entity.CommentCount)*s.Config.CommentWeight +
		float64(entity.RemakeCount)*s.Config.RemakeWeight +
		float64(entity.OrderCount)*s.Config.OrderWeight
	score := math.Log10(sum + 1)
	if score < 0 || math.IsNaN(score) {
		return 0
	}
	return score
}

func (s *Scorer) recency(entity *core.ContentEntity, now time.Time) float64 {
	if entity == nil || entity.CreatedAt == "" {
		return 0
	}
	created, err := time.Parse(time.RFC3339, entity.CreatedAt)
	if err != nil {
		return 0
	}
	ageHours := now.Sub(created).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	return math.Exp(-ageHours / s.Config.RecencyHalfLifeHours)
}

func (s *Scorer) personalization(signals map[string]float64) float64 {
	boost, ok := signals[SignalPersonalBoost]
	if !ok {
		boost = signals[SignalPersonalization]
	}
	v := boost + signals[SignalPersonaAffinity] - signals[SignalDiversityPenalty]
	if v < 0 {
		return 0
	}
	return v
}
