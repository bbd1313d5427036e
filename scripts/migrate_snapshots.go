// 手动触发的快照迁移脚本：把文件快照导入 MySQL
//
// 部署从 store.type=file 切换到 store.type=mysql 时执行一次，
// 之后主应用的 AutoSaver 会直接写数据库。
//
// 用法: go run scripts/migrate_snapshots.go
package main

import (
	"flag"
	"log"

	"testlab_backend/internal/config"
	"testlab_backend/internal/store"
	"testlab_backend/pkg/database"
)

func main() {
	configDir := flag.String("config", "configs", "配置文件目录")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	fileStore, err := store.NewFileStore(cfg.Store.DataDir)
	if err != nil {
		log.Fatalf("初始化文件存储失败: %v", err)
	}

	submissions, chats, err := fileStore.Load()
	if err != nil {
		log.Fatalf("读取文件快照失败: %v", err)
	}
	if len(submissions) == 0 && len(chats) == 0 {
		log.Println("文件快照为空，无需迁移")
		return
	}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	dbStore, err := store.NewDBStore(db)
	if err != nil {
		log.Fatalf("初始化数据库存储失败: %v", err)
	}

	if err := dbStore.Save(submissions, chats); err != nil {
		log.Fatalf("写入数据库失败: %v", err)
	}

	log.Printf("迁移完成: %d 名学生的提交, %d 个聊天会话", len(submissions), len(chats))
}
