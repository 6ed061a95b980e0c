package database

import (
	"fmt"
	"language_gems_backend/internal/config"
	"language_gems_backend/internal/model"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		cfg.Database.Host,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName,
		cfg.Database.Port,
		cfg.Database.SSLMode,
		cfg.Database.TimeZone,
	)

	logLevel := logger.Info
	if cfg.Server.Mode == "release" {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	// release 模式默认跳过迁移，除非显式带 -migrate 启动
	if cfg.Server.Mode == "release" && !cfg.ForceMigrate {
		return db, nil
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.GrammarTopic{},
		&model.GrammarContent{},
		&model.GrammarSession{},
		&model.GemEvent{},
		&model.Assignment{},
		&model.AssignmentProgress{},
	)

	if err != nil {
		return nil, err
	}

	// 同一 (student, content) 只允许一个 in_progress 会话。
	// 部分唯一索引在数据库层关闭 check-then-insert 的竞态。
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_grammar_sessions_active
		ON grammar_sessions (student_id, content_id)
		WHERE completion_status = 'in_progress' AND deleted_at IS NULL
	`).Error; err != nil {
		return nil, err
	}

	// 作业完成度的只读访问走数据库函数
	if err := db.Exec(`
		CREATE OR REPLACE FUNCTION assignment_completion_percentage(p_assignment_id varchar, p_student_id varchar)
		RETURNS numeric AS $$
		DECLARE
			required_count integer;
			completed_count integer;
		BEGIN
			SELECT COALESCE(jsonb_array_length(required_topic_ids), 0)
			INTO required_count
			FROM assignments
			WHERE id = p_assignment_id AND deleted_at IS NULL;

			IF required_count IS NULL OR required_count = 0 THEN
				RETURN 0;
			END IF;

			SELECT COUNT(DISTINCT s.topic_id)
			INTO completed_count
			FROM grammar_sessions s
			WHERE s.assignment_id = p_assignment_id
			  AND s.student_id = p_student_id
			  AND s.completion_status = 'completed'
			  AND s.deleted_at IS NULL
			  AND EXISTS (
				SELECT 1 FROM jsonb_array_elements_text(
					(SELECT required_topic_ids FROM assignments WHERE id = p_assignment_id)
				) t WHERE t = s.topic_id
			  );

			RETURN ROUND(completed_count::numeric * 100 / required_count, 2);
		END;
		$$ LANGUAGE plpgsql
	`).Error; err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// 默认语法主题（空库时插入，方便本地联调）
	var count int64
	db.Model(&model.GrammarTopic{}).Count(&count)
	if count == 0 {
		defaultTopics := []model.GrammarTopic{
			{Slug: "es-present-tense", Name: "Present Tense", Language: "es", Category: "verbs", Description: "Regular -ar, -er and -ir verbs in the present tense", Enabled: true},
			{Slug: "es-ser-vs-estar", Name: "Ser vs Estar", Language: "es", Category: "verbs", Description: "Choosing between ser and estar", Enabled: true},
			{Slug: "fr-definite-articles", Name: "Definite Articles", Language: "fr", Category: "nouns", Description: "le, la, les and l'", Enabled: true},
			{Slug: "de-cases-accusative", Name: "Accusative Case", Language: "de", Category: "cases", Description: "Accusative articles and pronouns", Enabled: true},
		}
		for _, t := range defaultTopics {
			db.Create(&t)
		}
	}

	return db, nil
}
